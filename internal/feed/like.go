package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
)

// ErrNotSignedIn is returned when a like is toggled without a user
var ErrNotSignedIn = errors.New("You must be logged in to like posts")

// LikeState is the remote like state of one (user, post) pair after a refresh
type LikeState struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
	Count  int64  `json:"count"`
}

// ToggleLike removes the viewer's like when currentlyLiked is set and adds one
// otherwise, then rereads the like state whether or not the write worked.
// Concurrent toggles are not serialized; the last refresh wins.
func (s *Synchronizer) ToggleLike(ctx context.Context, userID, postID string, currentlyLiked bool) (LikeState, error) {
	if userID == "" {
		return LikeState{PostID: postID, Liked: currentlyLiked}, ErrNotSignedIn
	}

	var mutErr error
	if currentlyLiked {
		mutErr = s.likes.DeleteLike(ctx, postID, userID)
	} else {
		mutErr = s.likes.CreateLike(ctx, &models.Like{UserID: userID, PostID: postID, CreatedAt: time.Now().UTC()})
	}
	if mutErr != nil {
		logger.Log.WithError(mutErr).WithField("post_id", postID).Warn("toggle like failed")
	}

	state, err := s.refreshLike(ctx, userID, postID)
	if err != nil {
		state = LikeState{PostID: postID, Liked: currentlyLiked}
		if mutErr == nil {
			mutErr = err
		}
	}
	return state, mutErr
}

func (s *Synchronizer) refreshLike(ctx context.Context, userID, postID string) (LikeState, error) {
	liked, err := s.likes.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return LikeState{}, fmt.Errorf("refresh like state: %w", err)
	}
	count, err := s.likes.GetLikesCountByPostID(ctx, postID)
	if err != nil {
		return LikeState{}, fmt.Errorf("refresh like count: %w", err)
	}
	return LikeState{PostID: postID, Liked: liked, Count: count}, nil
}

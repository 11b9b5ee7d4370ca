// Package feed loads post lists for rendering and toggles likes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
)

// Sort orders a list by creation time
type Sort string

const (
	SortDesc Sort = "desc"
	SortAsc  Sort = "asc"
)

// ParseSort maps a query value to a Sort; anything but "asc" is newest first.
func ParseSort(v string) Sort {
	if strings.EqualFold(strings.TrimSpace(v), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Query selects a list. UserID narrows to one author, Search filters after
// the fetch.
type Query struct {
	UserID string
	Search string
	Sort   Sort
}

// PostView is a post with the like state the viewer sees
type PostView struct {
	models.Post
	LikeCount     int
	LikedByViewer bool
}

func newPostView(p models.Post, viewerID string) PostView {
	return PostView{Post: p, LikeCount: len(p.Likes), LikedByViewer: p.LikedBy(viewerID)}
}

// Synchronizer reads lists from the repositories. Every call is a full
// refetch; nothing is cached between calls.
type Synchronizer struct {
	posts repositories.PostRepository
	users repositories.UserRepository
	likes repositories.LikeRepository
}

func NewSynchronizer(posts repositories.PostRepository, users repositories.UserRepository, likes repositories.LikeRepository) *Synchronizer {
	return &Synchronizer{posts: posts, users: users, likes: likes}
}

// FetchList returns the posts selected by q. A failed fetch is logged and
// yields an empty list.
func (s *Synchronizer) FetchList(ctx context.Context, q Query, viewerID string) []PostView {
	posts, err := s.posts.ListPosts(ctx, repositories.PostQuery{
		UserID:    q.UserID,
		Ascending: q.Sort == SortAsc,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", q.UserID).Warn("fetch posts failed, showing empty list")
		return []PostView{}
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p, viewerID))
	}
	return Filter(views, q.Search)
}

// Filter keeps the posts whose dish name or description contains search,
// ignoring case. An empty search keeps everything.
func Filter(posts []PostView, search string) []PostView {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return posts
	}

	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.DishName), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out
}

// FetchPost returns one post; repositories.ErrPostNotFound when it is gone.
func (s *Synchronizer) FetchPost(ctx context.Context, id, viewerID string) (*PostView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch post: %w", err)
	}
	view := newPostView(*post, viewerID)
	return &view, nil
}

// FetchUser returns a profile; repositories.ErrUserNotFound when missing.
func (s *Synchronizer) FetchUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// FetchUsers lists every profile, degrading to an empty list like FetchList.
func (s *Synchronizer) FetchUsers(ctx context.Context) []models.User {
	users, err := s.users.GetUsers(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("fetch users failed, showing empty list")
		return []models.User{}
	}
	return users
}

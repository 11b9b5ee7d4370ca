package flows

import (
	"context"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/storage"
)

// CreatePost checks the session, uploads the optional photo, confirms the
// author has a profile and inserts the post.
func (f *Flows) CreatePost(ctx context.Context, sessions SessionSource, req models.CreatePostRequest, photo *Upload) (*Outcome, error) {
	userID := currentUser(ctx, sessions)
	if userID == "" {
		return nil, fail(StageSession, "You must be logged in to create a post.", nil)
	}

	var imageURL string
	if photo != nil {
		url, err := f.upload(ctx, ImagesBucket, "postImages", userID, photo, storage.UploadOptions{})
		if err != nil {
			return nil, fail(StageUpload, "Image upload failed: "+err.Error(), err)
		}
		imageURL = url
	}

	if _, err := f.users.GetUserByID(ctx, userID); err != nil {
		return nil, fail(StageProfile, "Could not load your profile.", err)
	}

	post := &models.Post{
		UserID:      userID,
		DishName:    req.DishName,
		Description: req.Description,
		ImageURL:    imageURL,
		IsOwnRecipe: req.IsOwnRecipe,
		CreatedAt:   f.now().UTC(),
	}
	if !req.IsOwnRecipe {
		post.RecipeLink = req.RecipeLink
	}
	if err := f.posts.CreatePost(ctx, post); err != nil {
		return nil, fail(StageInsert, "Creating post failed: "+err.Error(), err)
	}

	return &Outcome{Message: "Post created successfully!", Redirect: "/feed", Delay: SuccessRedirectDelay}, nil
}

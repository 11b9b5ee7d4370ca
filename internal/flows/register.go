package flows

import (
	"context"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/storage"
)

// Register creates the identity, uploads the optional avatar, inserts the
// profile and signs the tab in. A failure leaves the earlier stages in place.
func (f *Flows) Register(ctx context.Context, accounts Accounts, req models.RegisterRequest, avatar *Upload) (*Outcome, error) {
	identity, err := accounts.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return nil, fail(StageSignUp, err.Error(), err)
	}

	var avatarURL string
	if avatar != nil {
		url, err := f.upload(ctx, AvatarsBucket, "avatars", identity.ID, avatar, storage.UploadOptions{CacheControl: "max-age=3600"})
		if err != nil {
			return nil, fail(StageUpload, "Image upload failed: "+err.Error(), err)
		}
		avatarURL = url
	}

	profile := &models.User{
		ID:          identity.ID,
		DisplayName: req.DisplayName,
		City:        req.City,
		Age:         req.Age,
		AvatarURL:   avatarURL,
	}
	if err := f.users.CreateUser(ctx, profile); err != nil {
		return nil, fail(StageInsert, "Saving to database failed: "+err.Error(), err)
	}

	if _, err := accounts.SignInWithPassword(ctx, req.Email, req.Password); err != nil {
		return nil, fail(StageSignIn, "Automatic login failed: "+err.Error(), err)
	}

	return &Outcome{Redirect: "/feed"}, nil
}

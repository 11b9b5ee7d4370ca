package flows

import (
	"context"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/storage"
)

// UpdateProfile checks the session, uploads the optional new avatar and
// writes the profile. Without an upload the current avatar is kept.
func (f *Flows) UpdateProfile(ctx context.Context, sessions SessionSource, req models.UpdateProfileRequest, avatar *Upload) (*Outcome, error) {
	userID := currentUser(ctx, sessions)
	if userID == "" {
		return nil, fail(StageSession, "No active session.", nil)
	}

	update := models.ProfileUpdate{DisplayName: req.DisplayName, City: req.City, Age: req.Age}
	if avatar != nil {
		url, err := f.upload(ctx, AvatarsBucket, "profilePics", userID, avatar, storage.UploadOptions{})
		if err != nil {
			return nil, fail(StageUpload, "Upload failed: "+err.Error(), err)
		}
		update.AvatarURL = url
	}

	if err := f.users.UpdateUser(ctx, userID, update); err != nil {
		return nil, fail(StageUpdate, "Update failed: "+err.Error(), err)
	}

	return &Outcome{Message: "Profile updated."}, nil
}

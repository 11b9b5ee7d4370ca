package models

import "time"

// Like links one user to one post. The (user_id, post_id) pair is unique.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_like_user_post"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;uniqueIndex:idx_like_user_post;index"`
	CreatedAt time.Time `json:"created_at"`
}

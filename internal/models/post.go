package models

import (
	"time"
)

// Post is a shared dish. CreatedAt is set once on insert and never updated.
type Post struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	UserID      string    `json:"user_id" gorm:"size:36;not null;index" bson:"user_id"`
	DishName    string    `json:"dish_name" gorm:"not null" bson:"dish_name"`
	Description string    `json:"description" bson:"description"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	RecipeLink  string    `json:"recipe_link,omitempty" bson:"recipe_link,omitempty"`
	IsOwnRecipe bool      `json:"is_own_recipe" bson:"is_own_recipe"`
	CreatedAt   time.Time `json:"created_at" gorm:"index" bson:"created_at"`

	Author User   `json:"author" gorm:"foreignKey:UserID" bson:"-"`
	Likes  []Like `json:"likes" gorm:"foreignKey:PostID" bson:"-"`
}

// CreatePostRequest is the create-post form
type CreatePostRequest struct {
	DishName    string `form:"dish_name" validate:"required,min=1,max=120"`
	Description string `form:"description" validate:"required,max=2000"`
	RecipeLink  string `form:"recipe_link" validate:"omitempty,url"`
	IsOwnRecipe bool   `form:"is_own_recipe"`
}

// LikedBy reports whether userID is among the post's likes
func (p Post) LikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

package repositories

import (
	"fmt"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"gorm.io/gorm"
)

// sqlLike is the likes table when posts live in the same database. The
// belongs-to declares the likes.post_id foreign key, which the has-many on
// Post alone does not create.
type sqlLike struct {
	models.Like
	Post models.Post `gorm:"foreignKey:PostID"`
}

func (sqlLike) TableName() string {
	return "likes"
}

// AutoMigrate creates or updates the relational tables. Posts only live in
// SQL when postsInSQL is set; otherwise they are kept in MongoDB and likes
// cannot reference them.
func AutoMigrate(db *gorm.DB, postsInSQL bool) error {
	tables := []interface{}{
		&models.Credential{},
		&models.User{},
	}
	if postsInSQL {
		tables = append(tables, &models.Post{}, &sqlLike{})
	} else {
		tables = append(tables, &models.Like{})
	}
	if err := db.AutoMigrate(tables...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

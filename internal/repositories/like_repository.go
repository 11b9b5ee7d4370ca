package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, userID string) error
	HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error)
	GetLikesCountByPostID(ctx context.Context, postID string) (int64, error)
	GetLikesByPostIDs(ctx context.Context, postIDs []string) ([]models.Like, error)
	DeleteLikesByPostID(ctx context.Context, postID string) error
}

// PostgresLikeRepository implements LikeRepository on any gorm dialect
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateLike inserts a like row. Liking a post that does not exist fails
// with ErrPostNotFound when posts share the database.
func (r *PostgresLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	err := r.db.WithContext(ctx).Create(like).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrAlreadyLiked
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrPostNotFound
	}
	return err
}

// DeleteLike deletes the like matching the exact (postID, userID) pair
func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, postID, userID string) error {
	res := r.db.WithContext(ctx).Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLikeNotFound
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikesCountByPostID counts the likes of a post
func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetLikesByPostIDs retrieves the likes of several posts at once
func (r *PostgresLikeRepository) GetLikesByPostIDs(ctx context.Context, postIDs []string) ([]models.Like, error) {
	var likes []models.Like
	if len(postIDs) == 0 {
		return likes, nil
	}
	if err := r.db.WithContext(ctx).Where("post_id IN ?", postIDs).Find(&likes).Error; err != nil {
		return nil, err
	}
	return likes, nil
}

// DeleteLikesByPostID removes every like of a post
func (r *PostgresLikeRepository) DeleteLikesByPostID(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

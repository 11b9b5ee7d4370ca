package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostQuery selects and orders posts. An empty UserID selects every post.
type PostQuery struct {
	UserID    string
	Ascending bool
}

// PostRepository defines the interface for post data operations. Posts are
// returned joined with their author and likes.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// PostgresPostRepository implements PostRepository on any gorm dialect
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// preparePost fills the ID and creation time of a post about to be inserted
func preparePost(post *models.Post) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
}

// CreatePost inserts a post; the author and likes fields are not written
func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	preparePost(post)
	return r.db.WithContext(ctx).Omit("Author", "Likes").Create(post).Error
}

// GetPostByID retrieves a post with its author and likes
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Likes").
		First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// ListPosts retrieves posts ordered by creation time
func (r *PostgresPostRepository) ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	order := "created_at DESC"
	if q.Ascending {
		order = "created_at ASC"
	}

	tx := r.db.WithContext(ctx).Preload("Author").Preload("Likes").Order(order)
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}

	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost deletes a post together with its likes
func (r *PostgresPostRepository) DeletePost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for profile data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, update models.ProfileUpdate) error
	DeleteUser(ctx context.Context, id string) error
}

// PostgresUserRepository implements UserRepository on any gorm dialect
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser inserts a profile row
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a profile by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the profiles with the given IDs, in no particular order
func (r *PostgresUserRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetUsers retrieves all profiles ordered by display name
func (r *PostgresUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("display_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser writes the editable profile columns of one user. An empty
// AvatarURL keeps the current avatar.
func (r *PostgresUserRepository) UpdateUser(ctx context.Context, id string, update models.ProfileUpdate) error {
	fields := map[string]interface{}{
		"display_name": update.DisplayName,
		"city":         update.City,
		"age":          update.Age,
	}
	if update.AvatarURL != "" {
		fields["avatar_url"] = update.AvatarURL
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser deletes a profile. Posts and likes of the user are left to the
// store's referential rules.
func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
		return ErrUserHasPosts
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/recipe-share/backend/internal/models"
	"gorm.io/gorm"
)

// CredentialRepository stores auth identities
type CredentialRepository interface {
	CreateCredential(ctx context.Context, cred *models.Credential) error
	GetCredentialByID(ctx context.Context, id string) (*models.Credential, error)
	GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error)
	GetCredentialByFirebaseUID(ctx context.Context, uid string) (*models.Credential, error)
	UpdateCredential(ctx context.Context, cred *models.Credential) error
}

// PostgresCredentialRepository implements CredentialRepository on any gorm dialect
type PostgresCredentialRepository struct {
	db *gorm.DB
}

// NewPostgresCredentialRepository creates a new PostgresCredentialRepository
func NewPostgresCredentialRepository(db *gorm.DB) *PostgresCredentialRepository {
	return &PostgresCredentialRepository{db: db}
}

func (r *PostgresCredentialRepository) CreateCredential(ctx context.Context, cred *models.Credential) error {
	err := r.db.WithContext(ctx).Create(cred).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresCredentialRepository) GetCredentialByID(ctx context.Context, id string) (*models.Credential, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresCredentialRepository) GetCredentialByEmail(ctx context.Context, email string) (*models.Credential, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *PostgresCredentialRepository) GetCredentialByFirebaseUID(ctx context.Context, uid string) (*models.Credential, error) {
	return r.first(ctx, "firebase_uid = ?", uid)
}

func (r *PostgresCredentialRepository) UpdateCredential(ctx context.Context, cred *models.Credential) error {
	return r.db.WithContext(ctx).Save(cred).Error
}

func (r *PostgresCredentialRepository) first(ctx context.Context, query string, arg interface{}) (*models.Credential, error) {
	var cred models.Credential
	if err := r.db.WithContext(ctx).Where(query, arg).First(&cred).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCredentialNotFound
		}
		return nil, err
	}
	return &cred, nil
}

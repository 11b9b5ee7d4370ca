package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Messages of these errors are shown to users verbatim.
var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrEmailTaken         = errors.New("User already registered")
	ErrWeakPassword       = errors.New("Password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("Unable to validate email address: invalid format")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrIDTokenUnsupported = errors.New("Signing in with an ID token is not enabled")
)

// Session is the authenticated identity held by one client
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Identity is the result of a sign up
type Identity struct {
	ID    string
	Email string
}

// IDTokenVerifier verifies third-party ID tokens; *firebase auth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Service is the identity provider: it owns credentials and issues tokens.
type Service struct {
	credentials repositories.CredentialRepository
	secret      []byte
	accessTTL   time.Duration
	refreshTTL  time.Duration
	verifier    IDTokenVerifier
	now         func() time.Time
}

type Option func(*Service)

// WithIDTokenVerifier enables SignInWithIDToken
func WithIDTokenVerifier(v IDTokenVerifier) Option {
	return func(s *Service) { s.verifier = v }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service
func NewService(credentials repositories.CredentialRepository, secret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		credentials: credentials,
		secret:      []byte(secret),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp creates a password identity
func (s *Service) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	_, err := s.credentials.GetCredentialByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repositories.ErrCredentialNotFound) {
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	cred := &models.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create credential: %w", err)
	}

	return &Identity{ID: cred.ID, Email: cred.Email}, nil
}

// SignIn checks an email/password pair and issues a session
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	cred, err := s.credentials.GetCredentialByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrCredentialNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	if cred.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(cred)
}

// SignInWithIDToken exchanges a verified Firebase ID token for a session. The
// identity is matched by Firebase UID, then by email, and created otherwise.
func (s *Service) SignInWithIDToken(ctx context.Context, idToken string) (*Session, error) {
	if s.verifier == nil {
		return nil, ErrIDTokenUnsupported
	}

	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := token.Claims["email"].(string)
	email = normalizeEmail(email)
	uid := token.UID

	cred, err := s.credentials.GetCredentialByFirebaseUID(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrCredentialNotFound):
		cred, err = s.linkFirebaseIdentity(ctx, uid, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	return s.issue(cred)
}

func (s *Service) linkFirebaseIdentity(ctx context.Context, uid, email string) (*models.Credential, error) {
	if email == "" {
		return nil, ErrInvalidToken
	}

	cred, err := s.credentials.GetCredentialByEmail(ctx, email)
	if err == nil {
		cred.FirebaseUID = &uid
		if err := s.credentials.UpdateCredential(ctx, cred); err != nil {
			return nil, fmt.Errorf("link firebase uid: %w", err)
		}
		return cred, nil
	}
	if !errors.Is(err, repositories.ErrCredentialNotFound) {
		return nil, fmt.Errorf("lookup credential: %w", err)
	}

	cred = &models.Credential{ID: uuid.NewString(), Email: email, FirebaseUID: &uid}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("create credential: %w", err)
	}
	return cred, nil
}

// Refresh issues a new session from a refresh token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	cred, err := s.credentials.GetCredentialByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrCredentialNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup credential: %w", err)
	}
	return s.issue(cred)
}

// Verify validates an access token and returns its claims
func (s *Service) Verify(accessToken string) (*models.JwtCustomClaims, error) {
	return s.parse(accessToken, tokenTypeAccess)
}

func (s *Service) issue(cred *models.Credential) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)

	access, err := s.sign(cred, tokenTypeAccess, now, expiresAt)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(cred, tokenTypeRefresh, now, now.Add(s.refreshTTL))
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       cred.ID,
		Email:        cred.Email,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) sign(cred *models.Credential, tokenType string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:    cred.ID,
		Email:     cred.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   cred.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return t, nil
}

func (s *Service) parse(tokenString, tokenType string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// Expiry is checked against the injected clock instead of jwt.TimeFunc.
	if !claims.VerifyExpiresAt(s.now(), true) || claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

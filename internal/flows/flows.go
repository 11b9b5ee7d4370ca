// Package flows runs the multi-step writes behind the create-post, profile
// and register forms. Each flow stops at the first failing stage.
package flows

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/storage"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
)

const (
	ImagesBucket  = "images"
	AvatarsBucket = "avatars"

	SuccessRedirectDelay = 2 * time.Second
)

// Stage names the step a flow failed in
type Stage string

const (
	StageSession Stage = "session"
	StageSignUp  Stage = "signup"
	StageUpload  Stage = "upload"
	StageProfile Stage = "profile"
	StageInsert  Stage = "insert"
	StageUpdate  Stage = "update"
	StageSignIn  Stage = "signin"
)

// Error is a failed flow. Message is shown to the user as is.
type Error struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(stage Stage, msg string, err error) *Error {
	if err != nil {
		logger.Log.WithError(err).WithField("stage", stage).Warn("flow aborted")
	}
	return &Error{Stage: stage, Message: msg, Err: err}
}

// Outcome is a successful flow. Redirect is empty when the page stays put.
type Outcome struct {
	Message  string
	Redirect string
	Delay    time.Duration
}

// Upload is a file attached to a form
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// SessionSource reports the session of the tab running the flow
type SessionSource interface {
	GetSession(ctx context.Context) (*auth.Session, error)
}

// Accounts creates identities and signs the tab in; *auth.Client implements it.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) (*auth.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) (*auth.Session, error)
}

// Flows holds what every flow writes to
type Flows struct {
	users repositories.UserRepository
	posts repositories.PostRepository
	store storage.Store
	now   func() time.Time
}

type Option func(*Flows)

// WithClock replaces time.Now for upload paths and timestamps
func WithClock(now func() time.Time) Option {
	return func(f *Flows) { f.now = now }
}

func New(users repositories.UserRepository, posts repositories.PostRepository, store storage.Store, opts ...Option) *Flows {
	f := &Flows{users: users, posts: posts, store: store, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// currentUser returns the signed-in user id or "" when there is none
func currentUser(ctx context.Context, sessions SessionSource) string {
	sess, err := sessions.GetSession(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("session lookup failed")
		return ""
	}
	if sess == nil {
		return ""
	}
	return sess.UserID
}

// upload stores file at <prefix>/<userID>/<unixms>-<name> and returns its public URL
func (f *Flows) upload(ctx context.Context, bucketName, prefix, userID string, file *Upload, opts storage.UploadOptions) (string, error) {
	objectPath := fmt.Sprintf("%s/%s/%d-%s", prefix, userID, f.now().UnixMilli(), sanitizeFilename(file.Filename))
	opts.ContentType = file.ContentType
	opts.Upsert = true

	bucket := f.store.Bucket(bucketName)
	if err := bucket.Upload(ctx, objectPath, file.Body, opts); err != nil {
		return "", err
	}
	return bucket.PublicURL(objectPath), nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}

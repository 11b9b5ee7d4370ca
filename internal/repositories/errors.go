package repositories

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrLikeNotFound       = errors.New("like not found")
	ErrAlreadyLiked       = errors.New("post already liked by this user")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserHasPosts       = errors.New("user still has posts")
)

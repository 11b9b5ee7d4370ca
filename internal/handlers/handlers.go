package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/internal/flows"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

const genericError = "Something went wrong. Please try again."

// render writes a page with the viewer of the current request
func render(c echo.Context, status int, name string, page views.Page) error {
	page.Viewer = middleware.Viewer(c)
	return c.Render(status, name, page)
}

func notFound(c echo.Context, what string) error {
	return render(c, http.StatusNotFound, "error", views.Page{Title: what + " not found"})
}

// bindForm binds and validates a form. The returned message is safe to show.
func bindForm(c echo.Context, req interface{}) string {
	if err := c.Bind(req); err != nil {
		return "Invalid form data."
	}
	if err := validate.Struct(req); err != nil {
		return validationMessage(err)
	}
	return ""
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid form data."
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, "Email is not a valid address")
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a URL", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, ". ") + "."
}

// userMessage is what a failed auth or flow call shows. Known errors carry
// their own text; anything else is logged and replaced.
func userMessage(err error) string {
	var flowErr *flows.Error
	if errors.As(err, &flowErr) {
		return flowErr.Message
	}
	for _, known := range []error{
		auth.ErrInvalidCredentials, auth.ErrEmailTaken, auth.ErrWeakPassword,
		auth.ErrInvalidEmail, auth.ErrInvalidToken, auth.ErrIDTokenUnsupported,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	logger.Log.WithError(err).Error("request failed")
	return genericError
}

// readUpload returns the named file of a multipart form, or nil when none
// was attached. The caller closes the returned upload.
func readUpload(c echo.Context, field string) (*flows.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	if fh.Filename == "" || fh.Size == 0 {
		return nil, func() {}, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &flows.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	}, func() { f.Close() }, nil
}

// wantsJSON is true for fetch/XHR callers that asked for JSON
func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// back redirects to the page the form was posted from when it is local
func back(c echo.Context, fallback string) error {
	return c.Redirect(http.StatusSeeOther, localReferer(c.Request(), fallback))
}

// localReferer is the path of a Referer on this host, or fallback. Paths a
// browser would read as another host ("//x", "/\x") are refused.
func localReferer(r *http.Request, fallback string) string {
	ref := r.Referer()
	if i := strings.Index(ref, "://"); i >= 0 {
		rest := ref[i+3:]
		if !strings.HasPrefix(rest, r.Host+"/") {
			return fallback
		}
		ref = rest[len(r.Host):]
	}
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") || strings.HasPrefix(ref, "/\\") {
		return fallback
	}
	return ref
}

package pubsite

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested post, author or category does not exist.
var ErrNotFound = sql.ErrNoRows

// ErrAuthorNotFound is matched by every AuthorNotFoundError.
var ErrAuthorNotFound = errors.New("author not found")

// AuthorNotFoundError reports a post whose author id has no directory entry.
type AuthorNotFoundError struct {
	Post string // slug of the post, empty for direct lookups
	User string
}

func (e *AuthorNotFoundError) Error() string {
	if e.Post == "" {
		return fmt.Sprintf("author %q not found", e.User)
	}
	return fmt.Sprintf("post %q: author %q not found in author directory", e.Post, e.User)
}

func (e *AuthorNotFoundError) Is(target error) bool {
	return target == ErrAuthorNotFound
}

// ContentError ties a failure to the content file that caused it.
type ContentError struct {
	Path string
	Err  error
}

func (e *ContentError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

func contentErr(path string, err error) error {
	var ce *ContentError
	if errors.As(err, &ce) && ce.Path == path {
		return err
	}
	return &ContentError{Path: path, Err: err}
}

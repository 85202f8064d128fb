package catalog

import "github.com/pkg/errors"

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book is already borrowed")
	ErrBookNotBorrowed = errors.New("book is not borrowed")
)

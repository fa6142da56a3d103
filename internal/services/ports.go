package services

import (
	"context"
	"io"
)

// Clipboard copies text for the user.
type Clipboard interface {
	Write(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) Write(text string) error { return f(text) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Ask(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Ask(message string) bool { return f(message) }

// ImageFile is an attached upload waiting to be encoded.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ImageEncoder turns an uploaded file into an embeddable data URI.
type ImageEncoder interface {
	Encode(ctx context.Context, file *ImageFile) (string, error)
}

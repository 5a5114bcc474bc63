// Package ocr turns images on disk into ordered lines of text.
package ocr

import (
	"context"
	"errors"
	"strings"
)

// ErrClosed is returned when recognition is attempted on a closed engine.
var ErrClosed = errors.New("ocr engine closed")

// Engine recognizes text in the image stored at imagePath.
// Lines are returned in reading order; an image without text yields an empty slice.
// Implementations must be safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) ([]string, error)
}

// JoinLines concatenates recognized lines into a single newline separated blob.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

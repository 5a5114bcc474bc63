package ocr

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// client is the subset of *gosseract.Client the engine relies on.
type client interface {
	SetLanguage(langs ...string) error
	SetImage(imagepath string) error
	GetBoundingBoxes(level gosseract.PageIteratorLevel) ([]gosseract.BoundingBox, error)
	Close() error
}

// Tesseract implements Engine on top of gosseract.
// A gosseract client is not goroutine-safe, so the engine keeps a fixed pool of
// clients and lends one to each call. The language models are loaded once per
// pooled client and reused for every request.
type Tesseract struct {
	languages []string
	factory   func() client

	clients chan client
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

var _ Engine = (*Tesseract)(nil)

// NewTesseract builds an engine with size pooled clients configured for languages.
func NewTesseract(languages []string, size int) (*Tesseract, error) {
	return newTesseract(languages, size, func() client { return gosseract.NewClient() })
}

func newTesseract(languages []string, size int, factory func() client) (*Tesseract, error) {
	if size <= 0 {
		size = 1
	}
	t := &Tesseract{
		languages: append([]string(nil), languages...),
		factory:   factory,
		clients:   make(chan client, size),
		done:      make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := t.newClient()
		if err != nil {
			t.Close()
			return nil, err
		}
		t.clients <- c
	}
	return t, nil
}

func (t *Tesseract) newClient() (client, error) {
	c := t.factory()
	if len(t.languages) > 0 {
		if err := c.SetLanguage(t.languages...); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("set languages: %w", err)
		}
	}
	return c, nil
}

// Recognize runs line-level recognition on imagePath.
// It blocks until a pooled client is free or ctx is done.
func (t *Tesseract) Recognize(ctx context.Context, imagePath string) ([]string, error) {
	var c client
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrClosed
	case c = <-t.clients:
	}

	lines, err := recognizeLines(c, imagePath)
	if err != nil {
		// A failed run can leave the client with a half-initialized image.
		// Swap it for a fresh one, or keep it when none can be built so the
		// pool never shrinks.
		if fresh, ferr := t.newClient(); ferr == nil {
			_ = c.Close()
			c = fresh
		}
	}
	t.release(c)
	return lines, err
}

func (t *Tesseract) release(c client) {
	if c == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = c.Close()
		return
	}
	t.clients <- c
}

// Close releases every idle pooled client. Calls in flight close their client
// when they finish.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	for {
		select {
		case c := <-t.clients:
			_ = c.Close()
		default:
			return nil
		}
	}
}

func recognizeLines(c client, imagePath string) ([]string, error) {
	if err := c.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return linesFromBoxes(boxes), nil
}

// linesFromBoxes keeps only the text of each line box, dropping blank lines.
func linesFromBoxes(boxes []gosseract.BoundingBox) []string {
	lines := make([]string, 0, len(boxes))
	for _, b := range boxes {
		if text := strings.TrimSpace(b.Word); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

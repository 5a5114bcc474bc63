// Package organizer sorts incoming files into per-extension folders and hands
// each one to the intake service.
package organizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docetl/internal/model"
)

// noExtDir collects files without an extension.
const noExtDir = "noext"

// ErrInvalidInterval is returned by Run for a zero or negative interval.
var ErrInvalidInterval = errors.New("organizer interval must be positive")

// Organizer moves files from a drop folder into <organized>/<ext>/ and notifies intake.
type Organizer struct {
	documentsDir string
	organizedDir string
	notifier     Notifier
	log          *slog.Logger
}

// New builds an Organizer.
func New(documentsDir, organizedDir string, notifier Notifier, log *slog.Logger) *Organizer {
	return &Organizer{
		documentsDir: documentsDir,
		organizedDir: organizedDir,
		notifier:     notifier,
		log:          log.With("component", "organizer"),
	}
}

// Run sweeps immediately and then every interval until ctx is done.
func (o *Organizer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := o.Sweep(ctx); err != nil {
			o.log.Error("sweep_failed", "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep handles every regular file currently in the drop folder and returns how
// many were moved. A failure on one file is logged and does not stop the sweep.
func (o *Organizer) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(o.documentsDir)
	if err != nil {
		return 0, fmt.Errorf("read documents dir: %w", err)
	}

	moved := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return moved, ctx.Err()
		}
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		dest, err := o.moveFile(name)
		if err != nil {
			o.log.Error("move_failed", "file", name, "error", err.Error())
			continue
		}
		moved++
		o.log.Info("file_moved", "file", name, "dest", dest)

		if err := o.notifier.Notify(ctx, model.IntakeRequest{Path: dest, OriginalName: name}); err != nil {
			o.log.Error("notify_failed", "file", name, "error", err.Error())
			continue
		}
		o.log.Info("intake_notified", "file", name)
	}
	return moved, nil
}

// ExtensionDir returns the folder name used for a file: its lower-case
// extension without the dot, or "noext".
func ExtensionDir(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return noExtDir
	}
	return ext
}

func (o *Organizer) moveFile(name string) (string, error) {
	extDir := filepath.Join(o.organizedDir, ExtensionDir(name))
	if err := os.MkdirAll(extDir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", extDir, err)
	}

	src := filepath.Join(o.documentsDir, name)
	dst := filepath.Join(extDir, name)

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}
	// Rename fails across filesystems; fall back to copy and remove.
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("remove source: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close destination: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}

// IsStopped reports whether err only signals a cancelled Run.
func IsStopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

package organizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docetl/internal/logging"
	"docetl/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, req model.IntakeRequest) error {
	return m.Called(ctx, req).Error(0)
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
}

func TestExtensionDir(t *testing.T) {
	assert.Equal(t, "png", ExtensionDir("Invoice_123.PNG"))
	assert.Equal(t, "gz", ExtensionDir("archive.tar.gz"))
	assert.Equal(t, "noext", ExtensionDir("README"))
}

func TestOrganizer_Sweep(t *testing.T) {
	ctx := context.Background()
	docs := t.TempDir()
	organized := filepath.Join(t.TempDir(), "organized")

	writeFile(t, docs, "Invoice_123.png")
	writeFile(t, docs, "notes")
	require.NoError(t, os.Mkdir(filepath.Join(docs, "subdir"), 0o755))

	n := new(mockNotifier)
	n.On("Notify", ctx, model.IntakeRequest{
		Path:         filepath.Join(organized, "png", "Invoice_123.png"),
		OriginalName: "Invoice_123.png",
	}).Return(nil).Once()
	n.On("Notify", ctx, model.IntakeRequest{
		Path:         filepath.Join(organized, "noext", "notes"),
		OriginalName: "notes",
	}).Return(errors.New("connection refused")).Once()

	o := New(docs, organized, n, logging.Discard())
	moved, err := o.Sweep(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.FileExists(t, filepath.Join(organized, "png", "Invoice_123.png"))
	assert.FileExists(t, filepath.Join(organized, "noext", "notes"))
	assert.NoFileExists(t, filepath.Join(docs, "Invoice_123.png"))
	assert.DirExists(t, filepath.Join(docs, "subdir"))
	n.AssertExpectations(t)

	t.Run("second sweep finds nothing", func(t *testing.T) {
		moved, err := o.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, moved)
	})
}

func TestOrganizer_SweepMissingDir(t *testing.T) {
	o := New(filepath.Join(t.TempDir(), "missing"), t.TempDir(), new(mockNotifier), logging.Discard())

	_, err := o.Sweep(context.Background())

	assert.ErrorContains(t, err, "read documents dir")
}

func TestOrganizer_Run(t *testing.T) {
	docs := t.TempDir()
	organized := t.TempDir()
	writeFile(t, docs, "a.jpg")

	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := New(docs, organized, n, logging.Discard()).Run(ctx, 10*time.Millisecond)

	assert.True(t, IsStopped(err))
	assert.FileExists(t, filepath.Join(organized, "jpg", "a.jpg"))
	n.AssertNumberOfCalls(t, "Notify", 1)
}

func TestOrganizer_RunRejectsNonPositiveInterval(t *testing.T) {
	dir := t.TempDir()
	o := New(dir, dir, new(mockNotifier), logging.Discard())

	for _, interval := range []time.Duration{0, -time.Second} {
		var err error
		assert.NotPanics(t, func() { err = o.Run(context.Background(), interval) })
		assert.ErrorIs(t, err, ErrInvalidInterval)
		assert.False(t, IsStopped(err))
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src.txt")

	require.NoError(t, copyFile(filepath.Join(dir, "src.txt"), filepath.Join(dir, "dst.txt")))
	got, err := os.ReadFile(filepath.Join(dir, "dst.txt"))
	require.NoError(t, err)
	assert.Equal(t, "src.txt", string(got))

	assert.Error(t, copyFile(filepath.Join(dir, "absent"), filepath.Join(dir, "x")))
}

func TestHTTPNotifier(t *testing.T) {
	t.Run("posts intake request", func(t *testing.T) {
		var got model.IntakeRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/process", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"message":"Processed successfully"}`))
		}))
		defer srv.Close()

		n := NewHTTPNotifier(srv.URL+"/", time.Second)
		err := n.Notify(context.Background(), model.IntakeRequest{Path: "organized/png/a.png", OriginalName: "a.png"})

		require.NoError(t, err)
		assert.Equal(t, model.IntakeRequest{Path: "organized/png/a.png", OriginalName: "a.png"}, got)
	})

	t.Run("client error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"File not found"}`))
		}))
		defer srv.Close()

		err := NewHTTPNotifier(srv.URL, time.Second).Notify(context.Background(), model.IntakeRequest{})

		assert.ErrorContains(t, err, "status 400")
		assert.ErrorContains(t, err, "File not found")
	})
}

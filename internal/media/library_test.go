package media

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/staysocial/staysocial-backend/internal/db"
	"github.com/staysocial/staysocial-backend/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    error
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: make(map[string][]byte)}
}

func (u *memoryUploader) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if u.fail != nil {
		return "", u.fail
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (u *memoryUploader) Remove(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}

func newTestLibrary(t *testing.T, uploader Uploader, delay time.Duration) *Library {
	t.Helper()
	logger := zap.NewNop().Sugar()
	database := db.NewInMemoryDatabase(logger)
	require.NoError(t, db.ConnectAndMigrate(context.Background(), database, db.AllSchemas()))
	t.Cleanup(func() { _ = database.Disconnect(context.Background()) })

	runner := jobs.NewRunner(jobs.Config{Kind: "upload"}, logger, nil, nil)
	t.Cleanup(runner.Close)
	return NewLibrary(database, uploader, runner, nil, delay, nil, logger)
}

func waitAsset(t *testing.T, task *jobs.Task) (Asset, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := task.Wait(ctx)
	if err != nil {
		return Asset{}, err
	}
	return out.(Asset), nil
}

func TestUploadStoresObjectAndRecord(t *testing.T) {
	up := newMemoryUploader()
	lib := newTestLibrary(t, up, 0)

	task, err := lib.Upload("s1", File{Name: "Lobby.JPG", Data: []byte("jpeg bytes"), Tags: []string{" Lobby ", "lobby", "Hotel"}})
	require.NoError(t, err)

	asset, err := waitAsset(t, task)
	require.NoError(t, err)
	assert.Equal(t, "Lobby.JPG", asset.Name)
	assert.Equal(t, KindImage, asset.Kind)
	assert.Equal(t, "image/jpeg", asset.ContentType)
	assert.Equal(t, int64(len("jpeg bytes")), asset.Size)
	assert.Equal(t, []string{"lobby", "hotel"}, asset.Tags)
	assert.Contains(t, asset.URL, "https://cdn.example.com/assets/")
	assert.Equal(t, 1, up.count())

	got, err := lib.Get(context.Background(), asset.ID)
	require.NoError(t, err)
	assert.Equal(t, asset.URL, got.URL)

	require.NoError(t, lib.Delete(context.Background(), asset.ID))
	assert.Equal(t, 0, up.count())
	_, err = lib.Get(context.Background(), asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, lib.Delete(context.Background(), asset.ID), ErrNotFound)
}

func TestPlaceholderUploaderByDefault(t *testing.T) {
	lib := newTestLibrary(t, nil, 0)

	task, err := lib.Upload("s1", File{Name: "menu.pdf"})
	require.NoError(t, err)
	asset, err := waitAsset(t, task)
	require.NoError(t, err)
	assert.Equal(t, PlaceholderURL, asset.URL)
	assert.Equal(t, KindDocument, asset.Kind)
}

func TestUploadValidation(t *testing.T) {
	lib := newTestLibrary(t, nil, 0)

	_, err := lib.Upload("s1", File{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidAsset)

	_, err = lib.Upload("s1", File{Name: "huge.mov", Size: MaxUploadSize + 1})
	assert.ErrorIs(t, err, ErrInvalidAsset)
}

func TestUploadSingleFlightPerSession(t *testing.T) {
	lib := newTestLibrary(t, nil, time.Hour)

	first, err := lib.Upload("s1", File{Name: "a.png"})
	require.NoError(t, err)
	_, err = lib.Upload("s1", File{Name: "b.png"})
	assert.ErrorIs(t, err, jobs.ErrInFlight)

	first.Cancel()
	_, err = waitAsset(t, first)
	assert.ErrorIs(t, err, context.Canceled)

	list, err := lib.List(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadFailureLeavesNoRecord(t *testing.T) {
	up := newMemoryUploader()
	up.fail = errors.New("bucket unavailable")
	lib := newTestLibrary(t, up, 0)

	task, err := lib.Upload("s1", File{Name: "a.png"})
	require.NoError(t, err)
	_, err = waitAsset(t, task)
	require.Error(t, err)
	assert.Equal(t, jobs.StatusFailed, task.Status())

	list, err := lib.List(context.Background(), "all", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListKindAndSearch(t *testing.T) {
	lib := newTestLibrary(t, nil, 0)
	ctx := context.Background()

	n, err := lib.Seed(ctx, Fixtures())
	require.NoError(t, err)
	require.Equal(t, 6, n)

	all, err := lib.List(ctx, "all", "")
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "Hotel Exterior", all[0].Name)

	images, err := lib.List(ctx, "image", "")
	require.NoError(t, err)
	assert.Len(t, images, 4)

	menus, err := lib.List(ctx, "", "MENU")
	require.NoError(t, err)
	assert.Len(t, menus, 2)

	videos, err := lib.List(ctx, "video", "chef")
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.NotEmpty(t, videos[0].Thumbnail)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindImage, KindOf("image/png"))
	assert.Equal(t, KindVideo, KindOf("video/mp4"))
	assert.Equal(t, KindDocument, KindOf("application/pdf"))
}

func TestNewS3UploaderDisabledWithoutCredentials(t *testing.T) {
	u, err := NewS3Uploader("", "us-east-1", "", "", "bucket", "")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = NewS3Uploader("https://s3.example.com", "us-east-1", "key", "secret", "", "")
	assert.Error(t, err)

	u, err = NewS3Uploader("https://s3.example.com/", "us-east-1", "key", "secret", "media", "")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/media/assets/a.png", u.FileURL("assets/a.png"))

	u, err = NewS3Uploader("https://s3.example.com", "us-east-1", "key", "secret", "media", "https://cdn.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/assets/a.png", u.FileURL("assets/a.png"))
}

package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
)

var ErrObjectNotFound = errors.New("storage object not found")

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// MemoryUploader keeps uploaded objects in process. Used with STORAGE_DRIVER=memory and tests.
type MemoryUploader struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (u *MemoryUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read object %s", key)
	}
	u.mu.Lock()
	u.objects[key] = data
	u.mu.Unlock()
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.objects[key]; !ok {
		return ErrObjectNotFound
	}
	delete(u.objects, key)
	return nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	if u.baseURL == "" || key == "" {
		return ""
	}
	return u.baseURL + "/" + key
}

// Object returns a copy of a stored object.
func (u *MemoryUploader) Object(key string) ([]byte, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	data, ok := u.objects[key]
	return bytes.Clone(data), ok
}

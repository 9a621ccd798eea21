package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStorage keeps objects in process memory. Presigned URLs use the
// mem:// scheme and are only meaningful to tests and local runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemory creates a new MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{objects: make(map[string]memObject)}
}

var _ Storage = (*MemoryStorage)(nil)

func (s *MemoryStorage) Put(_ context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return ObjectInfo{}, err
	}
	if opt.Size >= 0 && n != opt.Size {
		return ObjectInfo{}, fmt.Errorf("size mismatch: got %d bytes, expected %d", n, opt.Size)
	}
	sum := md5.Sum(buf.Bytes())
	now := time.Now()

	s.mu.Lock()
	s.objects[key] = memObject{data: buf.Bytes(), contentType: opt.ContentType, modified: now}
	s.mu.Unlock()

	return ObjectInfo{Key: key, Size: n, ETag: hex.EncodeToString(sum[:]), ContentType: opt.ContentType, LastModified: now}, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	u := url.URL{Scheme: "mem", Path: "/" + key}
	u.RawQuery = url.Values{"expires": {time.Now().Add(expiry).UTC().Format(time.RFC3339)}}.Encode()
	return u.String(), nil
}

func (s *MemoryStorage) Ping(context.Context) error { return nil }

// Len reports the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"replymate/internal/domain"
)

// FileBackend keeps every profile in one JSON document keyed by user ID and
// rewrites the whole file after each save.
type FileBackend struct {
	path string

	mu    sync.Mutex
	users map[string]domain.UserProfile
}

func OpenFile(path string) (*FileBackend, error) {
	b := &FileBackend{path: path, users: make(map[string]domain.UserProfile)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(raw, &b.users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return b, nil
}

func (b *FileBackend) Load(_ context.Context, userID string) (domain.UserProfile, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.users[userID]
	if !ok {
		return domain.UserProfile{}, false, nil
	}
	return p.Clone(), true, nil
}

func (b *FileBackend) Save(_ context.Context, userID string, profile domain.UserProfile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Memory only changes once the file does.
	next := make(map[string]domain.UserProfile, len(b.users)+1)
	for id, p := range b.users {
		next[id] = p
	}
	next[userID] = profile.Clone()
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(b.path, raw); err != nil {
		return err
	}
	b.users = next
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

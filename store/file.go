package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// sessionFile is the on-disk layout. All three keys live in one document so
// a single rename replaces or clears them atomically.
type sessionFile struct {
	AccessToken  string          `json:"auth_token"`
	RefreshToken string          `json:"auth_refresh_token,omitempty"`
	User         json.RawMessage `json:"auth_user,omitempty"`
}

// File is a [Store] backed by a single JSON file, the desktop/CLI analogue
// of browser localStorage. Writes go to a temp file in the same directory
// followed by a rename.
//
// File instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type File struct {
	path string
	mode fs.FileMode

	mu sync.Mutex
}

// NewFile describes the newfile operation and its observable behavior.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("session file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &File{path: path, mode: 0o600}, nil
}

// SaveSession describes the savesession operation and its observable behavior.
func (f *File) SaveSession(_ context.Context, creds Credentials, user []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := sessionFile{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		User:         json.RawMessage(user),
	}
	return f.write(doc)
}

// SaveUser describes the saveuser operation and its observable behavior.
func (f *File) SaveUser(_ context.Context, user []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.User = json.RawMessage(user)
	return f.write(doc)
}

// Credentials describes the credentials operation and its observable behavior.
func (f *File) Credentials(_ context.Context) (Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: doc.AccessToken, RefreshToken: doc.RefreshToken}, nil
}

// User describes the user operation and its observable behavior.
func (f *File) User(_ context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	if len(doc.User) == 0 {
		return nil, ErrNotFound
	}
	return []byte(doc.User), nil
}

// Clear describes the clear operation and its observable behavior.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (f *File) read() (sessionFile, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return sessionFile{}, ErrNotFound
	}
	if err != nil {
		return sessionFile{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var doc sessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt session files are treated as absent rather than fatal.
		return sessionFile{}, ErrNotFound
	}
	return doc, nil
}

func (f *File) write(doc sessionFile) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Chmod(f.mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

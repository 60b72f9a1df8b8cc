package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testStoreContract runs the shared Store behavior against one
// implementation: the triplet round-trips as a unit, SaveUser requires an
// existing session, and Clear leaves nothing behind.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Credentials(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("credentials on empty store: %v", err)
	}
	if _, err := s.User(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user on empty store: %v", err)
	}
	if err := s.SaveUser(ctx, []byte(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save user without session: %v", err)
	}

	creds := Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}
	user := []byte(`{"id":"u-1","email":"amal@awqef.example"}`)
	if err := s.SaveSession(ctx, creds, user); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := s.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if got != creds {
		t.Fatalf("credentials = %+v, want %+v", got, creds)
	}

	data, err := s.User(ctx)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if string(data) != string(user) {
		t.Fatalf("user = %s", data)
	}

	// Updating the snapshot must not disturb the tokens.
	updated := []byte(`{"id":"u-1","email":"amal@awqef.example","name":"Amal"}`)
	if err := s.SaveUser(ctx, updated); err != nil {
		t.Fatalf("save user: %v", err)
	}
	data, err = s.User(ctx)
	if err != nil {
		t.Fatalf("user after update: %v", err)
	}
	if string(data) != string(updated) {
		t.Fatalf("user after update = %s", data)
	}
	if got, _ := s.Credentials(ctx); got != creds {
		t.Fatalf("credentials changed by user update: %+v", got)
	}

	// Replacing the session swaps the whole triplet.
	rotated := Credentials{AccessToken: "acc-2", RefreshToken: "ref-2"}
	if err := s.SaveSession(ctx, rotated, user); err != nil {
		t.Fatalf("rotate session: %v", err)
	}
	if got, _ := s.Credentials(ctx); got != rotated {
		t.Fatalf("credentials after rotate = %+v", got)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := s.Credentials(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("credentials after clear: %v", err)
	}
	if _, err := s.User(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user after clear: %v", err)
	}

	// Clear on an already-empty store is not an error.
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	testStoreContract(t, NewMemory())
}

func TestFileStoreContract(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	testStoreContract(t, f)
}

func TestMemoryStoreCopiesUserBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	user := []byte(`{"id":"u-1"}`)
	if err := m.SaveSession(ctx, Credentials{AccessToken: "a"}, user); err != nil {
		t.Fatalf("save session: %v", err)
	}
	user[2] = 'X'

	data, err := m.User(ctx)
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	if string(data) != `{"id":"u-1"}` {
		t.Fatalf("stored user aliased caller buffer: %s", data)
	}
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	first, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	creds := Credentials{AccessToken: "acc-1", RefreshToken: "ref-1"}
	if err := first.SaveSession(ctx, creds, []byte(`{"id":"u-1"}`)); err != nil {
		t.Fatalf("save session: %v", err)
	}

	second, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	got, err := second.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if got != creds {
		t.Fatalf("credentials = %+v, want %+v", got, creds)
	}
}

func TestFileStoreCorruptFileReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if _, err := f.Credentials(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt file: %v", err)
	}
}

func TestFileStoreWriteMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := f.SaveSession(ctx, Credentials{AccessToken: "a"}, nil); err != nil {
		t.Fatalf("save session: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("session file mode = %o, want 600", perm)
	}
}

package securestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), "test-secret")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := `{"user":{"username":"admin"},"token":"tok-123","isLogin":true}`
	if err := s.Put("session", want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get("session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != want {
		t.Errorf("Get() = %q, want %q", got, want)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get("nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() = %q, want empty", got)
	}
}

func TestValueIsNotPlaintextOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, "test-secret")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Put("session", "token=super-secret-token"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "session.dat"))
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	if strings.Contains(string(raw), "super-secret-token") {
		t.Error("plaintext token visible in on-disk blob")
	}
}

func TestCorruptBlobReadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, "test-secret")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Put("session", "value"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	path := filepath.Join(dir, "session.dat")

	cases := []struct {
		name string
		blob []byte
	}{
		{"garbage", []byte("not a blob at all")},
		{"truncated", []byte("NLS1abc")},
		{"empty", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := os.WriteFile(path, tc.blob, 0o600); err != nil {
				t.Fatalf("writing corrupt blob: %v", err)
			}
			got, err := s.Get("session")
			if err != nil {
				t.Fatalf("Get() error = %v, want nil for corrupt blob", err)
			}
			if got != "" {
				t.Errorf("Get() = %q, want empty for corrupt blob", got)
			}
		})
	}
}

func TestWrongSecretReadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewFileStore(dir, "secret-one")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s1.Put("session", "value"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	s2, err := NewFileStore(dir, "secret-two")
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	got, err := s2.Get("session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() with wrong secret = %q, want empty", got)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)

	if err := s.Put("session", "value"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Remove("session"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	got, err := s.Get("session")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "" {
		t.Errorf("Get() after Remove = %q, want empty", got)
	}

	// Removing again is not an error.
	if err := s.Remove("session"); err != nil {
		t.Errorf("Remove() of missing key error = %v", err)
	}
}

func TestEmptySecretRejected(t *testing.T) {
	if _, err := NewFileStore(t.TempDir(), ""); err == nil {
		t.Error("NewFileStore() with empty secret, want error")
	}
}

package credentials

import (
	"errors"
	"os"
	"strings"
	"testing"
)

// fixedKeyProvider supplies a deterministic key for tests.
type fixedKeyProvider struct{ key []byte }

func (p *fixedKeyProvider) GetKey() ([]byte, error) { return p.key, nil }
func (p *fixedKeyProvider) Description() string     { return "test key" }

func testStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("MINA_CONFIG_DIR", t.TempDir())

	key := make([]byte, keyLength)
	copy(key, "0123456789abcdef0123456789abcdef")

	store, err := NewStoreWithKeyProvider(&fixedKeyProvider{key: key})
	if err != nil {
		t.Fatalf("NewStoreWithKeyProvider: %v", err)
	}
	return store
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := testStore(t)

	in := &Credentials{APIKey: "mk-secret-key-1234", ServerURL: "http://backend.test:5000"}
	if err := store.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if out.APIKey != in.APIKey {
		t.Errorf("APIKey = %q, want %q", out.APIKey, in.APIKey)
	}
	if out.ServerURL != in.ServerURL {
		t.Errorf("ServerURL = %q", out.ServerURL)
	}
	if out.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set on save")
	}
}

func TestSave_EncryptsAtRest(t *testing.T) {
	store := testStore(t)

	if err := store.Save(&Credentials{APIKey: "mk-plaintext-secret"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path, err := CredentialsPath()
	if err != nil {
		t.Fatalf("CredentialsPath: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading credentials file: %v", err)
	}

	if strings.Contains(string(raw), "mk-plaintext-secret") {
		t.Error("API key must not appear in plaintext on disk")
	}

	info, _ := os.Stat(path)
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestLoad_NoCredentials(t *testing.T) {
	store := testStore(t)

	if _, err := store.Load(); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load err = %v, want ErrNoCredentials", err)
	}
}

func TestLoad_WrongKey(t *testing.T) {
	store := testStore(t)
	if err := store.Save(&Credentials{APIKey: "mk-secret"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := make([]byte, keyLength)
	copy(other, "ffffffffffffffffffffffffffffffff")
	wrong, err := NewStoreWithKeyProvider(&fixedKeyProvider{key: other})
	if err != nil {
		t.Fatalf("NewStoreWithKeyProvider: %v", err)
	}

	if _, err := wrong.Load(); err == nil {
		t.Error("Load with the wrong key should fail")
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)
	if err := store.Save(&Credentials{APIKey: "mk-secret"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !store.Exists() {
		t.Fatal("credentials should exist after save")
	}
	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists() {
		t.Error("credentials should be gone after delete")
	}

	// Deleting again is not an error.
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestGetActiveCredential_EnvWins(t *testing.T) {
	store := testStore(t)
	if err := store.Save(&Credentials{APIKey: "mk-stored"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("MINA_API_KEY", "mk-from-env")

	creds, err := store.GetActiveCredential()
	if err != nil {
		t.Fatalf("GetActiveCredential: %v", err)
	}
	if creds.APIKey != "mk-from-env" {
		t.Errorf("APIKey = %q, env should win", creds.APIKey)
	}
}

func TestGetActiveCredential_Stored(t *testing.T) {
	store := testStore(t)
	if err := store.Save(&Credentials{APIKey: "mk-stored"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	creds, err := store.GetActiveCredential()
	if err != nil {
		t.Fatalf("GetActiveCredential: %v", err)
	}
	if creds.APIKey != "mk-stored" {
		t.Errorf("APIKey = %q", creds.APIKey)
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "*****"},
		{"mk-abcdefghijklmnop", "mk-********...****"},
		{"plainlongkey12345", "plai********..."},
	}

	for _, tt := range tests {
		if got := MaskAPIKey(tt.in); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateAPIKeyID(t *testing.T) {
	a := GenerateAPIKeyID("mk-one")
	b := GenerateAPIKeyID("mk-two")

	if len(a) != 8 {
		t.Errorf("id length = %d, want 8 hex chars", len(a))
	}
	if a == b {
		t.Error("distinct keys should produce distinct ids")
	}
	if a != GenerateAPIKeyID("mk-one") {
		t.Error("id should be deterministic")
	}
}

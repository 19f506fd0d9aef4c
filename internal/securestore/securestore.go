// Package securestore provides a confidential key-value store for the
// console's durable local state. Values are compressed and symmetrically
// encrypted before they touch disk, so a leaked state directory does not
// leak the session token.
//
// The store is a generic facade: it knows nothing about sessions. A
// missing key reads back as empty, and a corrupted or undecryptable blob
// is treated as absent rather than surfaced as an error, so callers can
// always fall back to their zero state.
package securestore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/scrypt"
)

// Store is a confidential key-value facade. Get returns the empty string
// for keys that are missing or unreadable.
type Store interface {
	Put(key, value string) error
	Get(key string) (string, error)
	Remove(key string) error
}

// Blob layout: magic | salt (16) | nonce (12) | AES-256-GCM ciphertext
// of the zstd-compressed plaintext.
var blobMagic = []byte("NLS1")

const (
	saltSize = 16

	// scrypt parameters for deriving the AES key from the store secret.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
	keySize = 32
)

// FileStore persists one encrypted blob per key in a state directory.
type FileStore struct {
	dir     string
	secret  []byte
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFileStore creates the state directory (0700) if needed and returns a
// store keyed by the given secret.
func NewFileStore(dir, secret string) (*FileStore, error) {
	if secret == "" {
		return nil, errors.New("securestore: empty secret")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing compressor: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("initializing decompressor: %w", err)
	}
	return &FileStore{
		dir:     dir,
		secret:  []byte(secret),
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Put compresses, encrypts and writes value under key.
func (s *FileStore) Put(key, value string) error {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generating salt: %w", err)
	}
	aead, err := s.aead(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	compressed := s.encoder.EncodeAll([]byte(value), nil)
	sealed := aead.Seal(nil, nonce, compressed, nil)

	blob := make([]byte, 0, len(blobMagic)+len(salt)+len(nonce)+len(sealed))
	blob = append(blob, blobMagic...)
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	if err := os.WriteFile(s.path(key), blob, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Get reads, decrypts and decompresses the value stored under key.
// A missing key yields ("", nil). A blob that fails to parse, decrypt or
// decompress also yields ("", nil) — the caller's empty default wins.
func (s *FileStore) Get(key string) (string, error) {
	blob, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s: %w", key, err)
	}

	value, err := s.open(blob)
	if err != nil {
		slog.Warn("securestore: discarding unreadable blob", "key", key, "error", err)
		return "", nil
	}
	return value, nil
}

// Remove deletes the blob for key. Removing a missing key is not an error.
func (s *FileStore) Remove(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) open(blob []byte) (string, error) {
	if !bytes.HasPrefix(blob, blobMagic) {
		return "", errors.New("bad magic")
	}
	rest := blob[len(blobMagic):]
	if len(rest) < saltSize {
		return "", errors.New("truncated blob")
	}
	salt, rest := rest[:saltSize], rest[saltSize:]

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}
	if len(rest) < aead.NonceSize() {
		return "", errors.New("truncated blob")
	}
	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	compressed, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decrypting: %w", err)
	}
	plain, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return "", fmt.Errorf("decompressing: %w", err)
	}
	return string(plain), nil
}

func (s *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.secret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("initializing cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".dat")
}

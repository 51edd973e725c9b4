package diskv

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

// Store persists values on disk as <base>/<prefix>/<server>/<user>, every
// segment base64url encoded so no character of a URL or user name can split
// or merge segments.
type Store struct {
	d *diskv.Diskv
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		return nil, errors.New("diskv: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("diskv: ensure base path: %w", err)
	}
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
	})}, nil
}

func (s *Store) Get(key services.StoreKey) (string, bool, error) {
	k := toKey(key)
	if !s.d.Has(k) {
		return "", false, nil
	}
	data, err := s.d.Read(k)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("diskv: read %s: %w", key.Prefix, err)
	}
	return string(data), true, nil
}

func (s *Store) Set(key services.StoreKey, value string) error {
	if err := s.d.Write(toKey(key), []byte(value)); err != nil {
		return fmt.Errorf("diskv: write %s: %w", key.Prefix, err)
	}
	return nil
}

func (s *Store) Delete(key services.StoreKey) error {
	err := s.d.Erase(toKey(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("diskv: erase %s: %w", key.Prefix, err)
	}
	return nil
}

func encode(s string) string {
	// an empty segment would collapse the directory level
	return "_" + base64.RawURLEncoding.EncodeToString([]byte(s))
}

// toKey makes `prefix/server/user` out of encoded segments.
func toKey(key services.StoreKey) string {
	return strings.Join([]string{encode(key.Prefix), encode(key.Server), encode(key.User)}, "/")
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), "/")
}

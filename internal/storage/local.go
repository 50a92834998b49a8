package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"tenderdocs/internal/apperr"
)

// LocalStorage implements Storage on the local filesystem. Intended for development and tests.
type LocalStorage struct {
	basePath      string
	publicBaseURL string
}

// NewLocalStorage creates the base directory if needed.
func NewLocalStorage(basePath, publicBaseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath:      basePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

var _ Storage = (*LocalStorage)(nil)

// resolve maps a key onto a path under basePath, rejecting keys that would escape it.
func (s *LocalStorage) resolve(op, key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || strings.HasSuffix(key, "/") || clean != "/"+key {
		return "", apperr.New(apperr.KindStorage, op, "invalid object key")
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean[1:])), nil
}

// Put writes the object; NoOverwrite uses O_EXCL so concurrent writers cannot both win.
func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	full, err := s.resolve("local.Put", key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return ObjectInfo{}, apperr.Wrap(apperr.KindStorage, "local.Put", err, "object write failed")
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opt.NoOverwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	f, err := os.OpenFile(full, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ObjectInfo{}, apperr.Wrap(apperr.KindAlreadyExists, "local.Put", err, "object already exists")
		}
		return ObjectInfo{}, apperr.Wrap(apperr.KindStorage, "local.Put", err, "object write failed")
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(full)
		return ObjectInfo{}, apperr.Wrap(apperr.KindStorage, "local.Put", err, "object write failed")
	}

	return ObjectInfo{
		Key:          key,
		Size:         n,
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Get opens the object for reading. The content type is inferred from the extension.
func (s *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	full, err := s.resolve("local.Get", key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, apperr.Wrap(apperr.KindNotFound, "local.Get", err, "object not found")
		}
		return nil, ObjectInfo{}, apperr.Wrap(apperr.KindStorage, "local.Get", err, "object read failed")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, apperr.Wrap(apperr.KindStorage, "local.Get", err, "object read failed")
	}
	return f, ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(full)),
		LastModified: st.ModTime(),
	}, nil
}

// Delete removes the object, ignoring a missing file.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	full, err := s.resolve("local.Delete", key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Wrap(apperr.KindStorage, "local.Delete", err, "object delete failed")
	}
	return nil
}

// List walks the tree and returns files whose key starts with prefix.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	out := make([]ObjectInfo, 0)
	err := filepath.WalkDir(s.basePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		st, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, ObjectInfo{Key: key, Size: st.Size(), LastModified: st.ModTime()})
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "local.List", err, "object listing failed")
	}
	return out, nil
}

// PresignGet returns publicBaseURL/key. Local objects are served by whatever fronts the directory,
// so expiry is not enforced.
func (s *LocalStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if s.publicBaseURL == "" {
		return "", apperr.New(apperr.KindStorage, "local.PresignGet", "public base url is not configured")
	}
	if _, err := s.resolve("local.PresignGet", key); err != nil {
		return "", err
	}
	return s.publicBaseURL + "/" + key, nil
}

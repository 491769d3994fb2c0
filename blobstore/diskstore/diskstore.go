// Package diskstore provides a local filesystem implementation of the
// blobstore.Store interface.
//
// Writes go through a temporary file in the target directory followed
// by a rename, so an artifact is either fully the old content or fully
// the new one. Concurrent operations are bounded by a semaphore.
package diskstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/geodepot/geodepot/blobstore"
	"golang.org/x/sync/semaphore"
)

const (
	sniffLen       = 512
	copyBufferSize = 1 << 20 // 1 MiB
	filePerm       = 0o644
	dirPerm        = 0o755

	defaultMaxConcurrentOps = 64
)

// Store implements the blobstore.Store interface on the local filesystem.
type Store struct {
	root string
	sem  *semaphore.Weighted
}

// New creates a new disk store rooted at cfg.RootDir.
// The root directory is created if it does not exist.
func New(cfg Config) (*Store, error) {
	if cfg.MaxConcurrentOps <= 0 {
		cfg.MaxConcurrentOps = defaultMaxConcurrentOps
	}

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}

	return &Store{
		root: root,
		sem:  semaphore.NewWeighted(int64(cfg.MaxConcurrentOps)),
	}, nil
}

// Put writes the artifact at the specified path, replacing any existing
// artifact atomically.
func (s *Store) Put(ctx context.Context, path string, reader io.Reader) (*blobstore.ObjectInfo, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errx.Wrap(err)
	}
	defer s.sem.Release(1)

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}

	// The temp file lives in the target directory so the final rename
	// stays on one filesystem and remains atomic.
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, errx.Wrap(err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	sniff := make([]byte, sniffLen)
	n, err := io.ReadFull(reader, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		cleanup()
		return nil, errx.Wrap(err)
	}
	sniff = sniff[:n]
	contentType := http.DetectContentType(sniff)

	if _, err := tmp.Write(sniff); err != nil {
		cleanup()
		return nil, errx.Wrap(err)
	}

	buf := make([]byte, copyBufferSize)
	copied, err := io.CopyBuffer(tmp, reader, buf)
	if err != nil {
		cleanup()
		return nil, errx.Wrap(err)
	}

	if err := tmp.Chmod(filePerm); err != nil {
		cleanup()
		return nil, errx.Wrap(err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, errx.Wrap(err)
	}

	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return nil, errx.Wrap(err)
	}

	return &blobstore.ObjectInfo{
		Path:         path,
		Size:         int64(n) + copied,
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
	}, nil
}

// Get retrieves an artifact and its metadata from the specified path.
func (s *Store) Get(ctx context.Context, path string) (*blobstore.Object, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errx.Wrap(err)
	}

	f, err := os.Open(full)
	if err != nil {
		s.sem.Release(1)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFoundErr(path)
		}
		return nil, errx.Wrap(err)
	}

	closeAll := func() {
		_ = f.Close()
		s.sem.Release(1)
	}

	stat, err := f.Stat()
	if err != nil {
		closeAll()
		return nil, errx.Wrap(err)
	}

	sniff := make([]byte, sniffLen)
	n, err := io.ReadFull(f, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		closeAll()
		return nil, errx.Wrap(err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		closeAll()
		return nil, errx.Wrap(err)
	}

	return &blobstore.Object{
		Content: &releasingReadCloser{rc: f, release: func() { s.sem.Release(1) }},
		Info: blobstore.ObjectInfo{
			Path:         path,
			Size:         stat.Size(),
			ContentType:  http.DetectContentType(sniff[:n]),
			LastModified: stat.ModTime().UTC(),
		},
	}, nil
}

// Delete removes the artifact at the specified path.
func (s *Store) Delete(ctx context.Context, path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return errx.Wrap(err)
	}
	defer s.sem.Release(1)

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return notFoundErr(path)
		}
		return errx.Wrap(err)
	}

	return nil
}

// Exists checks if an artifact exists at the specified path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return false, errx.Wrap(err)
	}
	defer s.sem.Release(1)

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errx.Wrap(err)
	}

	return true, nil
}

// List returns the paths of all stored artifacts under the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errx.Wrap(err)
	}
	defer s.sem.Release(1)

	paths := make([]string, 0)
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if prefix == "" || strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	sort.Strings(paths)
	return paths, nil
}

// resolve maps a store path to an absolute filesystem path, rejecting
// paths that are empty or escape the store root.
func (s *Store) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") {
		return "", invalidPathErr(path)
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if full != s.root && !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", invalidPathErr(path)
	}

	return full, nil
}

func notFoundErr(path string) error {
	return errx.New(
		"artifact not found",
		errx.WithCode(blobstore.CodeBlobNotFound),
		errx.WithType(errx.T_NotFound),
		errx.WithDetails(errx.D{"path": path}),
	)
}

func invalidPathErr(path string) error {
	return errx.New(
		"invalid artifact path",
		errx.WithCode(blobstore.CodeInvalidPath),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"path": path}),
	)
}

// releasingReadCloser releases the store semaphore when the content
// stream is closed.
type releasingReadCloser struct {
	rc      io.ReadCloser
	release func()
	once    sync.Once
}

func (r *releasingReadCloser) Read(p []byte) (int, error) {
	return r.rc.Read(p)
}

func (r *releasingReadCloser) Close() error {
	err := r.rc.Close()
	r.once.Do(r.release)
	return err
}

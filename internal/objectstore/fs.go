package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"cuesynth/internal/services"
)

const (
	lockFileName   = ".cuesynth.lock"
	lockRetryDelay = 25 * time.Millisecond
)

// FSStore keeps each bucket as a directory below Root. Writes to a bucket are
// serialized across processes with an advisory file lock.
type FSStore struct {
	root string
}

// NewFSStore returns a filesystem store rooted at root, creating it if needed.
func NewFSStore(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: store root is required", services.ErrConfiguration)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// Root returns the directory holding the buckets.
func (s *FSStore) Root() string {
	return s.root
}

// Preflight verifies the root is writable and has at least minFreeMiB of
// free space. A zero minimum skips the space check.
func (s *FSStore) Preflight(minFreeMiB uint64) error {
	if err := unix.Access(s.root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%w: store root %s: insufficient permissions: %v", services.ErrConfiguration, s.root, err)
	}
	if minFreeMiB == 0 {
		return nil
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(s.root, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", s.root, err)
	}
	freeMiB := uint64(stat.Bavail) * uint64(stat.Bsize) / (1 << 20)
	if freeMiB < minFreeMiB {
		return fmt.Errorf("%w: store root %s has %d MiB free, need %d", services.ErrConfiguration, s.root, freeMiB, minFreeMiB)
	}
	return nil
}

func (s *FSStore) objectPath(bucket, key string) (string, string, error) {
	if err := validateBucket(bucket); err != nil {
		return "", "", err
	}
	cleaned, err := CleanKey(key)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(s.root, bucket, filepath.FromSlash(cleaned)), nil
}

// Get implements Store.
func (s *FSStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, full, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

// Put implements Store. The body is written to a temp file and renamed into
// place while holding the bucket lock. The content type is not persisted.
func (s *FSStore) Put(ctx context.Context, bucket, key string, body []byte, _ string) (string, error) {
	cleaned, full, err := s.objectPath(bucket, key)
	if err != nil {
		return "", err
	}
	bucketDir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	lock := flock.New(filepath.Join(bucketDir, lockFileName))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock bucket %s: %w", bucket, err)
	}
	if !locked {
		return "", fmt.Errorf("lock bucket %s: not acquired", bucket)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(full), ".put-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("write %s/%s: %w", bucket, cleaned, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close %s/%s: %w", bucket, cleaned, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("commit %s/%s: %w", bucket, cleaned, err)
	}
	return cleaned, nil
}

// List implements Store. Keys are returned in lexical order; lock and temp
// files are skipped.
func (s *FSStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	if err := validateBucket(bucket); err != nil {
		return nil, err
	}
	prefix = normalizePrefix(prefix)
	bucketDir := filepath.Join(s.root, bucket)
	var keys []string
	err := filepath.WalkDir(bucketDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrNotExist) {
				return nil
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == lockFileName || strings.HasPrefix(name, ".put-") {
			return nil
		}
		rel, err := filepath.Rel(bucketDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", bucket, prefix, err)
	}
	slices.Sort(keys)
	return keys, nil
}

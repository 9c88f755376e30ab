package filestore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dataset-artifact-service/internal/core/domain"
	output "dataset-artifact-service/internal/core/ports/output"
)

// Layout decides how uploads map onto namespaces.
type Layout string

const (
	// LayoutScoped gives every upload its own directory under the root.
	LayoutScoped Layout = "scoped"
	// LayoutShared writes every upload into the root; same names overwrite.
	LayoutShared Layout = "shared"
)

const partialPrefix = ".partial-"

type fileStore struct {
	root   string
	layout Layout
}

// New creates the root directory if needed and returns a store over it.
func New(root string, layout Layout) (output.ArtifactStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if layout != LayoutShared {
		layout = LayoutScoped
	}
	s := &fileStore{root: abs, layout: layout}
	if err := s.EnsureNamespace(abs); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileStore) Root() string {
	return s.root
}

func (s *fileStore) NamespaceFor(uploadID uuid.UUID) string {
	if s.layout == LayoutShared {
		return s.root
	}
	return filepath.Join(s.root, uploadID.String())
}

func (s *fileStore) EnsureNamespace(namespace string) error {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create namespace: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *fileStore) Write(namespace, name string, data []byte) (string, error) {
	return s.write(namespace, name, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func (s *fileStore) WriteFrom(namespace, name string, r io.Reader) (string, error) {
	return s.write(namespace, name, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// write fills a temp file in the namespace and renames it into place, so a
// reader sees either the previous file or the complete new one.
func (s *fileStore) write(namespace, name string, fill func(io.Writer) error) (string, error) {
	path, err := s.Path(namespace, name)
	if err != nil {
		return "", err
	}
	if err := s.EnsureNamespace(namespace); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), partialPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", domain.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}

func (s *fileStore) Path(namespace, name string) (string, error) {
	dir, err := s.namespaceDir(namespace)
	if err != nil {
		return "", err
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidArtifactName, name)
	}
	return filepath.Join(dir, name), nil
}

func (s *fileStore) Exists(namespace, name string) (bool, error) {
	path, err := s.Path(namespace, name)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (s *fileStore) Open(name string) (*os.File, os.FileInfo, error) {
	rel := filepath.FromSlash(strings.TrimPrefix(name, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrInvalidArtifactName, name)
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, partialPrefix) {
			return nil, nil, domain.ErrArtifactNotFound
		}
	}

	path := filepath.Join(s.root, rel)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil, domain.ErrArtifactNotFound
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, domain.ErrArtifactNotFound
		}
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	return f, info, nil
}

// namespaceDir resolves namespace to an absolute directory inside the root.
func (s *fileStore) namespaceDir(namespace string) (string, error) {
	if namespace == "" {
		return s.root, nil
	}
	dir := namespace
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.root, dir)
	}
	dir = filepath.Clean(dir)
	rel, err := filepath.Rel(s.root, dir)
	if err != nil || (rel != "." && !filepath.IsLocal(rel)) {
		return "", fmt.Errorf("%w: namespace %q is outside the storage root", domain.ErrInvalidArtifactName, namespace)
	}
	return dir, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.HasPrefix(name, partialPrefix) {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

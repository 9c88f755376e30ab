package ports

import (
	"io"
	"os"

	"github.com/google/uuid"
)

// ArtifactStore is the directory-backed namespace for raw uploads and the
// files the engine derives from them.
type ArtifactStore interface {
	// Root is the directory that retrieval names are resolved against.
	Root() string

	// NamespaceFor returns the namespace an upload's files are grouped under.
	NamespaceFor(uploadID uuid.UUID) string

	// EnsureNamespace creates the namespace directory if absent.
	EnsureNamespace(namespace string) error

	// Write stores data under (namespace, name). The file only becomes
	// visible once it is complete.
	Write(namespace, name string, data []byte) (string, error)

	// WriteFrom is Write for streamed content.
	WriteFrom(namespace, name string, r io.Reader) (string, error)

	// Path resolves (namespace, name) without touching the filesystem.
	Path(namespace, name string) (string, error)

	// Exists reports whether (namespace, name) refers to a regular file.
	Exists(namespace, name string) (bool, error)

	// Open resolves a root-relative name and opens it for reading.
	Open(name string) (*os.File, os.FileInfo, error)
}

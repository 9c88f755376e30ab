package ports

import "context"

// MirrorFile is one local file to copy to the mirror.
type MirrorFile struct {
	Name string
	Path string
}

// ArtifactMirror copies a finished upload to secondary storage.
type ArtifactMirror interface {
	Mirror(ctx context.Context, prefix string, files []MirrorFile) error
}

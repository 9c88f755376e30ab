// Package objectstore copies finished uploads to an S3-compatible bucket.
package objectstore

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dataset-artifact-service/internal/config"
	output "dataset-artifact-service/internal/core/ports/output"
)

type objectPutter interface {
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type mirror struct {
	client      objectPutter
	bucket      string
	concurrency int
}

// NewMirror connects to MinIO and makes sure the bucket exists.
func NewMirror(ctx context.Context, cfg *config.MinIOConfig) (output.ArtifactMirror, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.WithField("bucket", cfg.Bucket).Info("created mirror bucket")
	}

	return newMirror(client, cfg.Bucket, cfg.Concurrency), nil
}

func newMirror(client objectPutter, bucket string, concurrency int) *mirror {
	if concurrency < 1 {
		concurrency = 1
	}
	return &mirror{client: client, bucket: bucket, concurrency: concurrency}
}

// Mirror uploads files to <bucket>/<prefix>/<name>. It stops at the first
// failure and returns it.
func (m *mirror) Mirror(ctx context.Context, prefix string, files []output.MirrorFile) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)
	for _, f := range files {
		f := f
		g.Go(func() error {
			object := path.Join(prefix, f.Name)
			contentType := mime.TypeByExtension(filepath.Ext(f.Name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			if _, err := m.client.FPutObject(gCtx, m.bucket, object, f.Path, minio.PutObjectOptions{
				ContentType: contentType,
			}); err != nil {
				return fmt.Errorf("put %s: %w", object, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"bucket": m.bucket,
		"prefix": prefix,
		"files":  len(files),
	}).Debug("mirrored upload")
	return nil
}

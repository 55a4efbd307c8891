package evidencestorage

import (
	"bytes"
	"context"
	"grc-backend/lib/utils/helpers"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// Provider object storage for evidence files
type Provider interface {
	Put(ctx context.Context, key string, content []byte, contentType string, meta map[string]string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

func NewInstance(client *minio.Client, bucketName string) Provider {
	return &impl{
		client:     client,
		bucketName: bucketName,
	}
}

type impl struct {
	client     *minio.Client
	bucketName string
}

func (i impl) Put(ctx context.Context, key string, content []byte, contentType string, meta map[string]string) error {
	if i.client == nil {
		return errors.New("s3 client is not initialized")
	}
	_, err := i.client.PutObject(ctx, i.bucketName, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType:  helpers.FirstNonEmpty(contentType, "application/octet-stream"),
		UserMetadata: meta,
	})
	if err != nil {
		return errors.Wrap(err, "error uploading object")
	}
	return nil
}

func (i impl) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if i.client == nil {
		return nil, errors.New("s3 client is not initialized")
	}
	obj, err := i.client.GetObject(ctx, i.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting object")
	}
	return obj, nil
}

func (i impl) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if i.client == nil {
		return "", errors.New("s3 client is not initialized")
	}
	u, err := i.client.PresignedGetObject(ctx, i.bucketName, key, expires, nil)
	if err != nil {
		return "", errors.Wrap(err, "error presigning object url")
	}
	return u.String(), nil
}

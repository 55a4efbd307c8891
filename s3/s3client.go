package s3client

import (
	"context"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

var Client *minio.Client

type Settings struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
}

func NewClient(settings Settings) (*minio.Client, error) {
	client, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKeyID, settings.SecretAccessKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error creating object storage client")
	}
	return client, nil
}

// EnsureBucket creates the bucket when missing, created reports whether it was new
func EnsureBucket(ctx context.Context, client *minio.Client, bucket, region string) (created bool, err error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return false, errors.Wrap(err, "error checking bucket")
	}
	if exists {
		return false, nil
	}
	err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
	if err != nil {
		// lost a race with another instance
		if exists, checkErr := client.BucketExists(ctx, bucket); checkErr == nil && exists {
			return false, nil
		}
		return false, errors.Wrap(err, "error creating bucket")
	}
	return true, nil
}

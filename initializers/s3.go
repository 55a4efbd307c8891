package initializers

import (
	"context"
	"grc-backend/config"
	s3client "grc-backend/s3"
	"time"

	log "github.com/sirupsen/logrus"
)

const s3InitTimeout = 30 * time.Second

func InitS3(ctx context.Context) {
	s3conf := config.Conf.S3
	logger := log.
		WithField("endpoint", s3conf.Endpoint).
		WithField("bucket", s3conf.BucketName)
	client, err := s3client.NewClient(s3client.Settings{
		Endpoint:        s3conf.Endpoint,
		AccessKeyID:     s3conf.AccessKeyID,
		SecretAccessKey: s3conf.SecretAccessKey,
		UseSSL:          *s3conf.UseSSL,
		Region:          s3conf.Region,
	})
	if err != nil {
		logger.WithError(err).Error("evidence storage unavailable")
		return
	}
	s3client.Client = client

	ctx, cancel := context.WithTimeout(ctx, s3InitTimeout)
	defer cancel()
	created, err := s3client.EnsureBucket(ctx, client, s3conf.BucketName, s3conf.Region)
	if err != nil {
		// uploads will fail until the bucket is reachable
		logger.WithError(err).Error("evidence bucket check failed")
		return
	}
	logger.WithField("created", created).Info("evidence storage ready")
}

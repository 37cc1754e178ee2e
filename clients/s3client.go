package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3Config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/emzola/librarian/config"
)

const uploadTimeout = time.Minute

// ErrStorageDisabled is returned by a store built without S3 settings.
var ErrStorageDisabled = errors.New("object storage is not configured")

// S3Store uploads book cover images to an AWS S3 bucket.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewS3Store configures a new AWS S3 object store. When no bucket is configured
// the returned store refuses every upload.
func NewS3Store(ctx context.Context, cfg config.Config) (*S3Store, error) {
	if cfg.S3.Bucket == "" {
		return &S3Store{}, nil
	}
	creds := credentials.NewStaticCredentialsProvider(cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, "")
	awsCfg, err := s3Config.LoadDefaultConfig(ctx,
		s3Config.WithCredentialsProvider(creds),
		s3Config.WithRegion(cfg.S3.Region),
		s3Config.WithHTTPClient(NewHTTPClient(uploadTimeout)),
	)
	if err != nil {
		return nil, err
	}
	return &S3Store{
		uploader: manager.NewUploader(s3.NewFromConfig(awsCfg)),
		bucket:   cfg.S3.Bucket,
		region:   cfg.S3.Region,
	}, nil
}

// Put stores body under key and returns the public URL of the object.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if s.uploader == nil {
		return "", ErrStorageDisabled
	}
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: int64(len(body)),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

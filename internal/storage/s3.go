package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Store uploads objects to a public-read S3 bucket.
type S3Store struct {
	bucket   string
	region   string
	uploader *s3manager.Uploader
	svc      *s3.S3
}

func NewS3Store(bucket, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}

	return &S3Store{
		bucket:   bucket,
		region:   region,
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
	}, nil
}

func (s *S3Store) Save(ctx context.Context, key, contentType string, body io.Reader) error {
	input := &s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to s3: %w", err)
	}
	return nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) URL(key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"househunt/server/internal/config"
	"househunt/server/internal/models"
)

// s3Storage keeps property images in an S3 bucket. Objects are publicly
// addressable through the bucket URL recorded on the image metadata.
type s3Storage struct {
	cfg      *config.Config
	s3Client *s3.Client
}

// NewS3Storage creates an S3-backed Storage from static credentials.
func NewS3Storage(cfg *config.Config) (Storage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"", // session token
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &s3Storage{
		cfg:      cfg,
		s3Client: s3.NewFromConfig(awsCfg),
	}, nil
}

// Save uploads the object under a uuid-prefixed key so identical original
// filenames never collide.
func (s *s3Storage) Save(ctx context.Context, filename string, r io.Reader) (models.PropertyImage, error) {
	key := fmt.Sprintf("uploads/%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := s.Put(ctx, key, r); err != nil {
		return models.PropertyImage{}, err
	}
	return models.PropertyImage{
		Filename: key,
		Path:     s.objectURL(key),
	}, nil
}

func (s *s3Storage) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", filename, err)
	}
	return out.Body, nil
}

func (s *s3Storage) Put(ctx context.Context, filename string, r io.Reader) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.AwsS3Bucket),
		Key:    aws.String(filename),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", filename, err)
	}
	return nil
}

func (s *s3Storage) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AwsS3Bucket, s.cfg.AwsRegion, key)
}

// New selects the storage backend configured for the process.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3Storage(cfg)
	default:
		return NewLocalStorage(cfg.UploadDir)
	}
}

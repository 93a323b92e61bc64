package utils

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
)

// Storage uploads evidence photos to S3 under random keys.
type Storage struct {
	S3      s3iface.S3API
	Bucket  string
	BaseURL string
}

func NewStorage(s3Client s3iface.S3API, bucket, baseURL string) *Storage {
	return &Storage{S3: s3Client, Bucket: bucket, BaseURL: baseURL}
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// UploadEvidence stores one photo and returns its public URL.
func (s *Storage) UploadEvidence(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("evidence/%s%s", uuid.NewString(), extFor(contentType))
	_, err := s.S3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("upload evidence: %w", err)
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, key), nil
}

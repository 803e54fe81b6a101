package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cookbook/backend/config"
)

// ImageService handles recipe and avatar image storage on S3.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// UploadRecipeImage stores image data under recipe-images/ and returns the
// public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, imageData []byte, contentType string) (string, error) {
	fileName := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), extensionFor(contentType))
	return s.upload(ctx, imageData, fileName, contentType)
}

// UploadAvatar stores image data under avatars/ and returns the public URL.
func (s *ImageService) UploadAvatar(ctx context.Context, imageData []byte, contentType string) (string, error) {
	fileName := fmt.Sprintf("avatars/%s%s", uuid.New().String(), extensionFor(contentType))
	return s.upload(ctx, imageData, fileName, contentType)
}

func (s *ImageService) upload(ctx context.Context, imageData []byte, fileName, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(imageData),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	logrus.WithField("url", publicURL).Info("uploaded image to S3")

	return publicURL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

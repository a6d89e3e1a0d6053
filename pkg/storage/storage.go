// Package storage uploads user images to S3-compatible object storage
package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	apperrors "github.com/mentormatch/mentormatch-api/pkg/errors"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"github.com/mentormatch/mentormatch-api/pkg/metrics"
	"github.com/mentormatch/mentormatch-api/pkg/retry"
	"go.uber.org/zap"
)

// MaxImageSize is the largest accepted decoded image
const MaxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ObjectPutter is the part of the S3 API used for uploads
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds object storage settings
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	// PublicBaseURL overrides the URL prefix of uploaded objects (e.g. a CDN)
	PublicBaseURL string
}

// Client uploads objects to one bucket
type Client struct {
	s3      ObjectPutter
	bucket  string
	baseURL string
	retry   retry.Config
}

// NewClient creates a client for AWS S3 or any S3-compatible endpoint
func NewClient(cfg Config) *Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	baseURL := cfg.PublicBaseURL
	switch {
	case baseURL != "":
	case cfg.Endpoint != "":
		baseURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.BucketName)
	default:
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, region)
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return NewClientWithPutter(s3.New(opts), cfg.BucketName, baseURL)
}

// NewClientWithPutter builds a client over an existing S3 API implementation
func NewClientWithPutter(putter ObjectPutter, bucket, baseURL string) *Client {
	return &Client{
		s3:      putter,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   retry.StorageConfig(),
	}
}

// UploadImage stores data under key and returns its public URL
func (c *Client) UploadImage(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	err := retry.Do(ctx, c.retry, "storage_"+operation, func() error {
		_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return err
	})

	duration := metrics.MeasureDuration(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall(ctx, "object_storage", operation, status, duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
		zap.Error(err),
	)

	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return c.baseURL + "/" + key, nil
}

// DecodeImage decodes a base64 payload, with or without a data URI prefix,
// and enforces MaxImageSize
func DecodeImage(imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "data:") {
		parts := strings.SplitN(imageData, ",", 2)
		if len(parts) != 2 {
			return nil, apperrors.InvalidInputError("image", "invalid data URI format")
		}
		imageData = parts[1]
	}

	// reject before decoding anything obviously oversized
	if base64.StdEncoding.DecodedLen(len(imageData)) > MaxImageSize+2 {
		return nil, apperrors.InvalidInputError("image", fmt.Sprintf("file too large (max %d bytes)", MaxImageSize))
	}

	data, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, apperrors.InvalidInputError("image", "not valid base64")
	}
	if len(data) == 0 {
		return nil, apperrors.InvalidInputError("image", "empty image")
	}
	if len(data) > MaxImageSize {
		return nil, apperrors.InvalidInputError("image", fmt.Sprintf("file too large (max %d bytes)", MaxImageSize))
	}
	return data, nil
}

// ImageExtension returns the file extension for an allowed content type
func ImageExtension(contentType string) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", apperrors.InvalidInputError("contentType", fmt.Sprintf("%s is not allowed (jpeg, png, webp)", contentType))
	}
	return ext, nil
}

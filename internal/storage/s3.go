package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"wedding-backend/internal/config"
)

// S3Store — хранение блобов в S3-совместимом объектном хранилище
// (AWS S3, MinIO, Yandex Object Storage).
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store создаёт S3Store из конфигурации.
// При заданном endpoint используется path-style адресация (MinIO).
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка конфигурации AWS SDK: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
	}, nil
}

// Save загружает содержимое reader в бакет под сгенерированным ключом.
func (s *S3Store) Save(ctx context.Context, reader io.Reader, originalFilename, contentType string) (*SaveResult, error) {
	key := generateStorageName(originalFilename)

	// Буферизуем для определения размера — медиафайлы сайта небольшие
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения данных: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	url := s.publicURL + "/" + key
	return &SaveResult{
		Filename: key,
		URL:      url,
		BlobURL:  url,
		Size:     int64(len(data)),
	}, nil
}

// Delete удаляет объект из бакета. Отсутствующий объект — не ошибка:
// S3 DeleteObject идемпотентен.
func (s *S3Store) Delete(ctx context.Context, filename string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из S3: %w", err)
	}
	return nil
}

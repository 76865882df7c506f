package storage

import (
	"CloudStash/config"
	"context"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore implements ObjectStore with a MinIO client. The client
// speaks S3, so any S3-compatible endpoint works.
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore builds an ObjectStore from a MinIO client.
func NewMinioStore(client *minio.Client) *MinioStore {
	return &MinioStore{client: client}
}

// PutObject uploads an object, silently replacing any existing one.
func (s *MinioStore) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return classify(err)
}

// GetObject fetches an object and its size.
func (s *MinioStore) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, classify(err)
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, classify(err)
	}
	info := ObjectInfo{
		Key:  key,
		Size: stat.Size,
	}
	return obj, info, nil
}

// RemoveObject deletes an object.
func (s *MinioStore) RemoveObject(ctx context.Context, bucket, key string) error {
	return classify(s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}))
}

// EnsureBucket checks bucket access and creates the bucket when absent.
func (s *MinioStore) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return classify(err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{
			Region: config.AppConfig.AWSRegion,
		}); err != nil {
			return classify(err)
		}
	}
	return nil
}

func newMinioClient() *minio.Client {
	client, err := minio.New(config.AppConfig.S3Endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
		Secure: config.AppConfig.S3UseSSL,
		Region: config.AppConfig.AWSRegion,
	})
	if err != nil {
		log.Fatalln("minio error:", err)
	}
	return client
}

// InitMinio builds the object store and bootstraps the main bucket.
func InitMinio() ObjectStore {
	store := NewMinioStore(newMinioClient())
	// 不需要人工去控制台建立 bucket 直接后端进行操作
	if err := store.EnsureBucket(context.Background(), config.AppConfig.S3Bucket); err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	log.Println("init minio success")
	return store
}

// InitMinioTest builds the object store against the test bucket.
func InitMinioTest() (ObjectStore, error) {
	store := NewMinioStore(newMinioClient())
	if err := store.EnsureBucket(context.Background(), config.AppConfig.S3BucketTest); err != nil {
		return nil, err
	}
	return store, nil
}

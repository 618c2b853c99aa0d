// Package files offloads permission-slip bodies to MinIO object storage.
// Storage is optional: without it (or on any storage error) bodies stay
// inline in the permission record as base64, which is always a valid state.
package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"campusmate/api/internal/store"
)

type Storage struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Storage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}

	return &Storage{client: client, bucket: bucket}, nil
}

// Put decodes the base64 body and uploads it under key.
func (s *Storage) Put(ctx context.Context, key, base64Data string) error {
	body, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return fmt.Errorf("decode file body: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Get downloads the object and returns it base64-encoded.
func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", key, err)
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return base64.StdEncoding.EncodeToString(body), nil
}

// Remove deletes the object. Absent objects are not an error.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Offload moves a permission's inline body to object storage. On any error
// the record keeps its inline body.
func Offload(ctx context.Context, storage *Storage, p store.Permission) store.Permission {
	if storage == nil || p.FileData == "" {
		return p
	}
	key := "permissions/" + p.ID
	if err := storage.Put(ctx, key, p.FileData); err != nil {
		log.Printf("files: offload %s failed, keeping inline body: %v", p.ID, err)
		return p
	}
	p.ObjectKey = key
	p.FileData = ""
	return p
}

// Rehydrate fills the inline body back in for records whose body lives in
// object storage. Failures leave the record as stored and are logged.
func Rehydrate(ctx context.Context, storage *Storage, p store.Permission) store.Permission {
	if storage == nil || p.ObjectKey == "" || p.FileData != "" {
		return p
	}
	data, err := storage.Get(ctx, p.ObjectKey)
	if err != nil {
		log.Printf("files: rehydrate %s failed: %v", p.ID, err)
		return p
	}
	p.FileData = data
	return p
}

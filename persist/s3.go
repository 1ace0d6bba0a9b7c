package persist

import (
	"context"
	"fmt"
	"io"

	"github.com/rushteam/slimrec/core"
)

// S3Store 是 S3 兼容协议实现的 ObjectStore。
// 保存 = 完整字节流的单次 PUT；加载 = 单次 GET，整个 body 读入内存后再反序列化。
// 不直接依赖具体 SDK：通过 core.S3Client 注入（支持 AWS S3、阿里云 OSS、腾讯云 COS、MinIO 等）。
type S3Store struct {
	client core.S3Client
	bucket string
}

// NewS3Store 创建 S3 兼容对象存储。
func NewS3Store(client core.S3Client, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Name() string { return "s3" }

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	if s.client == nil {
		return core.NewDomainError(core.ModulePersist, core.ErrorCodeInvalidInput, "persist: s3 client not set")
	}
	if err := s.client.PutObject(ctx, s.bucket, key, data); err != nil {
		return fmt.Errorf("persist: upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.client == nil {
		return nil, core.NewDomainError(core.ModulePersist, core.ErrorCodeInvalidInput, "persist: s3 client not set")
	}
	reader, err := s.client.GetObject(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("persist: download s3://%s/%s: %w", s.bucket, key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("persist: read s3://%s/%s: %w", s.bucket, key, err)
	}
	return data, nil
}

func (s *S3Store) Close() error { return nil }

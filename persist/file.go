package persist

import (
	"context"
	"fmt"
	"os"
)

// FileStore 是本地文件系统实现的 ObjectStore。
// Put 按常规写语义创建/截断文件；Get 读取不存在的文件是硬 I/O 错误。
type FileStore struct{}

// NewFileStore 创建本地文件存储。
func NewFileStore() *FileStore { return &FileStore{} }

func (f *FileStore) Name() string { return "file" }

func (f *FileStore) Put(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(key, data, 0o644); err != nil {
		return fmt.Errorf("persist: write file %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("persist: read file %s: %w", key, err)
	}
	return data, nil
}

func (f *FileStore) Close() error { return nil }

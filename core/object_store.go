package core

import (
	"context"
	"io"
)

// ObjectStore 是模型持久化的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（persist）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//
// 实现：
//   - persist.FileStore 本地文件系统
//   - persist.S3Store   S3 兼容对象存储（单次 PUT / GET 完整字节流）
//   - persist.RedisStore Redis 单 key 存储
type ObjectStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Put 写入完整的序列化字节流（覆盖写）
	Put(ctx context.Context, key string, data []byte) error

	// Get 读取完整的序列化字节流；不存在时返回 IO_ERROR/NOT_FOUND
	Get(ctx context.Context, key string) ([]byte, error)

	// Close 关闭连接/释放资源
	Close() error
}

// S3Client S3 兼容协议客户端接口（不直接依赖具体 SDK，支持依赖注入）。
// S3 兼容协议支持 AWS S3、阿里云 OSS、腾讯云 COS、MinIO 等。
type S3Client interface {
	// GetObject 获取对象内容
	// bucket 是存储桶名称
	// key 是对象键（文件路径）
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)

	// PutObject 上传对象内容（一次性写入完整字节流）
	PutObject(ctx context.Context, bucket, key string, data []byte) error
}

// 持久化错误定义（使用统一的 DomainError）
var (
	// ErrObjectNotFound 表示持久化目标不存在
	ErrObjectNotFound = NewDomainError(ModulePersist, ErrorCodeNotFound, "persist: object not found")
)

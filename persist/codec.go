// Package persist 实现模型聚合的持久化：MessagePack 编解码 + 路径路由 + 存储后端。
//
// 路径寻址：
//   - file://<path> 或裸路径 → 本地文件系统
//   - s3://<bucket>/<key>    → S3 兼容对象存储（需注入 core.S3Client）
//   - redis://<addr>/<db>/<key> → Redis 单 key
//
// 注意：此包只包含实现，接口定义在 core 包（core.ObjectStore / core.S3Client）。
package persist

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Marshal 把对象序列化为 MessagePack 字节流（紧凑、字段标签化、支持 schema 演进）。
func Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("persist: serialize: %w", err)
	}
	return data, nil
}

// Unmarshal 从 MessagePack 字节流反序列化对象。
func Unmarshal(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("persist: deserialize: %w", err)
	}
	return nil
}

package persist

import (
	"strconv"
	"strings"

	"github.com/rushteam/slimrec/core"
)

// Router 按路径 scheme 路由到具体的 ObjectStore。
// S3 客户端通过字段注入；未注入时访问 s3:// 路径报 INVALID_INPUT。
type Router struct {
	S3 core.S3Client
}

// Open 解析路径并返回 (存储后端, 后端内的 key)。
// 调用方负责在用完后 Close 返回的存储。
func (r *Router) Open(path string) (core.ObjectStore, string, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		bucket, key := parseS3Path(path)
		if bucket == "" {
			return nil, "", core.NewDomainError(core.ModulePersist, core.ErrorCodeInvalidInput,
				"persist: invalid s3 path: no bucket name found: "+path)
		}
		return NewS3Store(r.S3, bucket), key, nil

	case strings.HasPrefix(path, "redis://"):
		addr, db, key, err := parseRedisPath(path)
		if err != nil {
			return nil, "", err
		}
		store, err := NewRedisStore(addr, db)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil

	case strings.HasPrefix(path, "file://"):
		return NewFileStore(), strings.TrimPrefix(path, "file://"), nil

	default:
		return NewFileStore(), path, nil
	}
}

// parseS3Path 解析 s3://bucket-name/path/to/file 为 (bucket, key)。
// 首个路径段是 bucket，剩余部分是 key（无 "/" 时 key 为空）。
func parseS3Path(path string) (string, string) {
	rest := strings.TrimPrefix(path, "s3://")
	bucket, key, found := strings.Cut(rest, "/")
	if !found {
		return bucket, ""
	}
	return bucket, key
}

// parseRedisPath 解析 redis://addr/db/key 为 (addr, db, key)。
// 例如 redis://localhost:6379/0/slim:model。
func parseRedisPath(path string) (string, int, string, error) {
	rest := strings.TrimPrefix(path, "redis://")
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) != 3 {
		return "", 0, "", core.NewDomainError(core.ModulePersist, core.ErrorCodeInvalidInput,
			"persist: invalid redis path, want redis://addr/db/key: "+path)
	}
	db, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, "", core.NewDomainError(core.ModulePersist, core.ErrorCodeInvalidInput,
			"persist: invalid redis db in path: "+path)
	}
	return parts[0], db, parts[2], nil
}

package persist

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"github.com/rushteam/slimrec/core"
)

// TestRouter_Open 测试路径 scheme 到存储后端的路由
func TestRouter_Open(t *testing.T) {
	r := &Router{S3: &fakeS3{objects: map[string][]byte{}}}

	tests := []struct {
		name      string
		path      string
		wantStore string
		wantKey   string
		wantErr   bool
	}{
		{"裸路径", "/tmp/model.msgpack", "file", "/tmp/model.msgpack", false},
		{"相对路径", "model.msgpack", "file", "model.msgpack", false},
		{"file scheme", "file:///tmp/model.msgpack", "file", "/tmp/model.msgpack", false},
		{"s3 路径", "s3://my-bucket/models/slim.msgpack", "s3", "models/slim.msgpack", false},
		{"s3 无 key", "s3://my-bucket", "s3", "", false},
		{"s3 无 bucket", "s3://", "", "", true},
		{"redis db 非数字", "redis://localhost:6379/abc/model", "", "", true},
		{"redis 段数不足", "redis://localhost:6379/model", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, key, err := r.Open(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("期望错误，实际成功: %v %q", store, key)
				}
				if !core.IsInvalidInput(err) {
					t.Errorf("期望 INVALID_INPUT，实际 %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) 失败: %v", tt.path, err)
			}
			defer store.Close()
			if store.Name() != tt.wantStore {
				t.Errorf("后端期望 %s，实际 %s", tt.wantStore, store.Name())
			}
			if key != tt.wantKey {
				t.Errorf("key 期望 %q，实际 %q", tt.wantKey, key)
			}
		})
	}
}

// TestParseRedisPath 测试 redis://addr/db/key 解析（key 里允许再出现 "/"）
func TestParseRedisPath(t *testing.T) {
	addr, db, key, err := parseRedisPath("redis://localhost:6379/3/slim:model/v2")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if addr != "localhost:6379" || db != 3 || key != "slim:model/v2" {
		t.Errorf("解析结果不对: addr=%s db=%d key=%s", addr, db, key)
	}
}

// TestFileStore_RoundTrip 测试本地文件后端的写读往返
func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore()
	path := filepath.Join(t.TempDir(), "blob.bin")
	payload := []byte{0x01, 0x02, 0xff, 0x00}

	if err := store.Put(ctx, path, payload); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := store.Get(ctx, path)
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("读回内容不一致: %v != %v", got, payload)
	}

	if _, err := store.Get(ctx, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("读取不存在的文件应返回错误")
	}
}

// fakeS3 是内存版 core.S3Client，按 bucket/key 存储
type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) GetObject(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s/%s", bucket, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeS3) PutObject(_ context.Context, bucket, key string, data []byte) error {
	f.objects[bucket+"/"+key] = data
	return nil
}

var _ core.S3Client = (*fakeS3)(nil)

// TestS3Store_RoundTrip 测试 S3 后端的写读往返与缺客户端报错
func TestS3Store_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string][]byte{}}
	store := NewS3Store(client, "models")
	payload := []byte("snapshot-bytes")

	if err := store.Put(ctx, "slim/v1.msgpack", payload); err != nil {
		t.Fatalf("上传失败: %v", err)
	}
	got, err := store.Get(ctx, "slim/v1.msgpack")
	if err != nil {
		t.Fatalf("下载失败: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("下载内容不一致: %s != %s", got, payload)
	}

	if _, err := store.Get(ctx, "slim/missing"); err == nil {
		t.Errorf("下载不存在的对象应返回错误")
	}

	// 未注入客户端
	empty := NewS3Store(nil, "models")
	if err := empty.Put(ctx, "k", payload); !core.IsInvalidInput(err) {
		t.Errorf("无客户端时 Put 期望 INVALID_INPUT，实际 %v", err)
	}
	if _, err := empty.Get(ctx, "k"); !core.IsInvalidInput(err) {
		t.Errorf("无客户端时 Get 期望 INVALID_INPUT，实际 %v", err)
	}
}

// TestRedisStore_RoundTrip 测试 Redis 后端（需要本地 Redis，默认跳过）
func TestRedisStore_RoundTrip(t *testing.T) {
	t.Skip("需要本地 Redis 实例，集成环境下手动启用")

	ctx := context.Background()
	store, err := NewRedisStore("localhost:6379", 0)
	if err != nil {
		t.Fatalf("连接 Redis 失败: %v", err)
	}
	defer store.Close()

	payload := []byte("snapshot-bytes")
	if err := store.Put(ctx, "slimrec:test:model", payload); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	got, err := store.Get(ctx, "slimrec:test:model")
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("读回内容不一致")
	}
	if _, err := store.Get(ctx, "slimrec:test:missing"); err != core.ErrObjectNotFound {
		t.Errorf("不存在的 key 期望 ErrObjectNotFound，实际 %v", err)
	}
}

// TestCodec_RoundTrip 测试统一序列化入口的往返与错误包装
func TestCodec_RoundTrip(t *testing.T) {
	type payload struct {
		Name  string  `msgpack:"n"`
		Score float64 `msgpack:"s"`
	}

	data, err := Marshal(payload{Name: "slim", Score: 0.5})
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}

	var got payload
	if err := Unmarshal(data, &got); err != nil {
		t.Fatalf("反序列化失败: %v", err)
	}
	if got.Name != "slim" || got.Score != 0.5 {
		t.Errorf("往返内容不一致: %+v", got)
	}

	// 损坏的字节流是硬错误
	if err := Unmarshal([]byte{0xc1}, &got); err == nil {
		t.Errorf("损坏数据应返回错误")
	}
}

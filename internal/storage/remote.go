package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound 对象不存在
var ErrNotFound = errors.New("object not found")

// ObjectInfo 远端对象的元数据，LastModified 为固定格式文本（见 TimestampFormat）
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified string
	ETag         string
	ContentType  string
}

// RemoteStore 以 bucket 为单位、按名称访问的对象存储
type RemoteStore interface {
	// Put 写入对象
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get 读取对象内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Head 获取对象元数据
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// Exists 判断对象是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// List 列出前缀下的所有对象
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// Delete 删除对象
	Delete(ctx context.Context, key string) error

	// IsNotFoundError 判断错误是否表示对象不存在
	IsNotFoundError(err error) bool
}

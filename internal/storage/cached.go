package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"time"

	"k8s.io/klog/v2"

	"github.com/hello-base/ohashi/internal/eventbus"
)

// CachedStaticStorage 静态资源存储：保存时先写远端 bucket，再以相同字节写入本地缓存目录；
// 修改时间优先读取进程内清单，未命中时才向远端获取元数据
type CachedStaticStorage struct {
	remote   RemoteStore
	local    *FileSystemStorage
	manifest *Manifest
	hashed   *HashedNames

	location      string
	baseURL       string
	fileOverwrite bool
	manifestPath  string
	now           func() time.Time
	events        *eventbus.StaticEventBus
}

// Option CachedStaticStorage 选项
type Option func(*CachedStaticStorage)

// WithLocation 远端对象的 key 前缀
func WithLocation(location string) Option {
	return func(s *CachedStaticStorage) { s.location = location }
}

// WithBaseURL 静态资源的访问前缀，如 /static/
func WithBaseURL(baseURL string) Option {
	return func(s *CachedStaticStorage) { s.baseURL = baseURL }
}

// WithFileOverwrite 为 false 时同名文件追加后缀避免覆盖
func WithFileOverwrite(overwrite bool) Option {
	return func(s *CachedStaticStorage) { s.fileOverwrite = overwrite }
}

// WithManifestPath 清单文件路径
func WithManifestPath(p string) Option {
	return func(s *CachedStaticStorage) { s.manifestPath = p }
}

// WithManifest 使用外部清单
func WithManifest(m *Manifest) Option {
	return func(s *CachedStaticStorage) { s.manifest = m }
}

// WithHashedNameTTL 带哈希文件名缓存的过期时间，0 表示不过期
func WithHashedNameTTL(ttl time.Duration) Option {
	return func(s *CachedStaticStorage) { s.hashed = NewHashedNames(ttl) }
}

// WithEvents 保存与删除后发布 StaticEvent
func WithEvents(bus *eventbus.StaticEventBus) Option {
	return func(s *CachedStaticStorage) { s.events = bus }
}

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(s *CachedStaticStorage) { s.now = now }
}

// NewCachedStaticStorage 创建缓存静态资源存储
func NewCachedStaticStorage(remote RemoteStore, local *FileSystemStorage, opts ...Option) *CachedStaticStorage {
	s := &CachedStaticStorage{
		remote:        remote,
		local:         local,
		fileOverwrite: true,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.manifest == nil {
		s.manifest = NewManifest()
	}
	if s.hashed == nil {
		s.hashed = NewHashedNames(0)
	}
	if s.baseURL == "" && local != nil {
		s.baseURL = local.BaseURL
	}
	return s
}

// Manifest 返回进程内清单
func (s *CachedStaticStorage) Manifest() *Manifest {
	return s.manifest
}

// Local 返回本地缓存存储
func (s *CachedStaticStorage) Local() *FileSystemStorage {
	return s.local
}

// LoadManifest 从清单文件恢复
func (s *CachedStaticStorage) LoadManifest() error {
	if s.manifestPath == "" {
		return nil
	}
	return s.manifest.Load(s.manifestPath)
}

// SaveManifest 持久化清单
func (s *CachedStaticStorage) SaveManifest() error {
	if s.manifestPath == "" {
		return nil
	}
	return s.manifest.Save(s.manifestPath)
}

// PreloadMetadata 列出远端 location 下的对象填充清单
func (s *CachedStaticStorage) PreloadMetadata(ctx context.Context) error {
	prefix, err := NormalizeName(s.location, "")
	if err != nil {
		return err
	}
	if prefix != "" {
		prefix += "/"
	}
	n, err := s.manifest.Preload(ctx, s.remote, prefix)
	if err != nil {
		return err
	}
	klog.V(6).Infof("storage: preloaded %d entries under %q", n, prefix)
	return nil
}

// Save 保存内容并返回最终名称
// 远端写入在前，名称可能被冲突策略改写；随后以同一名称、同一字节写本地缓存。
// 两次写入之间失败不做补偿，错误原样返回。
func (s *CachedStaticStorage) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	name = CleanName(name)
	if !s.fileOverwrite {
		name, err = AvailableName(ctx, name, s.Exists)
		if err != nil {
			return "", err
		}
	}
	key, err := NormalizeName(s.location, name)
	if err != nil {
		return "", err
	}

	if err := s.remote.Put(ctx, key, bytes.NewReader(data), mime.TypeByExtension(path.Ext(name))); err != nil {
		return "", err
	}
	if _, err := s.local.Save(name, bytes.NewReader(data)); err != nil {
		return "", err
	}

	sum := md5.Sum(data)
	s.manifest.Put(Entry{
		Name:         key,
		LastModified: FormatTimestamp(s.now()),
		Size:         int64(len(data)),
		ETag:         `"` + hex.EncodeToString(sum[:]) + `"`,
	})
	klog.V(6).Infof("storage: saved %s (%d bytes)", key, len(data))
	s.publish(ctx, eventbus.StaticEvent{Type: eventbus.StaticEventSaved, Name: name, Key: key, Size: int64(len(data))})
	return name, nil
}

// ModifiedTime 返回对象最后修改时间（本地时区）
// 清单命中直接解析；未命中时向远端 HEAD，结果不写回清单
func (s *CachedStaticStorage) ModifiedTime(ctx context.Context, name string) (time.Time, error) {
	key, err := NormalizeName(s.location, CleanName(name))
	if err != nil {
		return time.Time{}, err
	}

	lastModified := ""
	if entry, ok := s.manifest.Get(key); ok {
		lastModified = entry.LastModified
	} else {
		info, err := s.remote.Head(ctx, key)
		if err != nil {
			return time.Time{}, err
		}
		lastModified = info.LastModified
	}
	return ParseTimestamp(lastModified)
}

// Exists 判断对象是否存在，清单命中时不访问远端
func (s *CachedStaticStorage) Exists(ctx context.Context, name string) (bool, error) {
	key, err := NormalizeName(s.location, CleanName(name))
	if err != nil {
		return false, err
	}
	if _, ok := s.manifest.Get(key); ok {
		return true, nil
	}
	return s.remote.Exists(ctx, key)
}

// Size 返回对象大小
func (s *CachedStaticStorage) Size(ctx context.Context, name string) (int64, error) {
	key, err := NormalizeName(s.location, CleanName(name))
	if err != nil {
		return 0, err
	}
	if entry, ok := s.manifest.Get(key); ok {
		return entry.Size, nil
	}
	info, err := s.remote.Head(ctx, key)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

// Open 读取内容，优先使用本地缓存副本
func (s *CachedStaticStorage) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	name = CleanName(name)
	f, err := s.local.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	key, err := NormalizeName(s.location, name)
	if err != nil {
		return nil, err
	}
	rc, err := s.remote.Get(ctx, key)
	if err != nil {
		if s.remote.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return rc, nil
}

// Delete 删除远端对象、本地副本与清单记录
func (s *CachedStaticStorage) Delete(ctx context.Context, name string) error {
	name = CleanName(name)
	key, err := NormalizeName(s.location, name)
	if err != nil {
		return err
	}
	if err := s.remote.Delete(ctx, key); err != nil {
		return err
	}
	if err := s.local.Delete(name); err != nil {
		return err
	}
	s.manifest.Remove(key)
	s.Invalidate(name)
	s.publish(ctx, eventbus.StaticEvent{Type: eventbus.StaticEventDeleted, Name: name, Key: key})
	return nil
}

// Invalidate 丢弃名称对应的带哈希名称，下次访问时重新计算
func (s *CachedStaticStorage) Invalidate(name string) {
	name = CleanName(name)
	s.hashed.Forget(name)
	s.manifest.RemoveHashedPath(name)
}

// publish 事件处理失败只记录日志，不影响已完成的写入
func (s *CachedStaticStorage) publish(ctx context.Context, event eventbus.StaticEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event.Type, event); err != nil {
		klog.Errorf("storage: handle %s event for %s failed: %v", event.Type, event.Name, err)
	}
}

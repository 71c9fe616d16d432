package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore 进程内的对象存储，用于开发环境与测试
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time

	heads atomic.Int64
}

// NewMemoryStore 创建内存对象存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		now:     time.Now,
	}
}

// SetClock 替换时钟
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

// HeadCalls 返回 Head 被调用的次数
func (m *MemoryStore) HeadCalls() int64 {
	return m.heads.Load()
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType, modified: m.now()}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	m.heads.Add(1)
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	info := obj.info(key)
	return &info, nil
}

func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	return ok, nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]ObjectInfo, 0, len(m.objects))
	for key, obj := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, obj.info(key))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (o memoryObject) info(key string) ObjectInfo {
	sum := md5.Sum(o.data)
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		LastModified: FormatTimestamp(o.modified),
		ETag:         `"` + hex.EncodeToString(sum[:]) + `"`,
		ContentType:  o.contentType,
	}
}

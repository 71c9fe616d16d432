package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const manifestVersion = "1.0"

// Entry 清单中的一条记录
type Entry struct {
	Name         string `json:"name"`
	LastModified string `json:"last_modified"`
	Size         int64  `json:"size"`
	ETag         string `json:"etag,omitempty"`
}

type manifestFile struct {
	Version string            `json:"version"`
	Paths   map[string]string `json:"paths"`
	Entries map[string]Entry  `json:"entries"`
}

// Manifest 进程内清单：记录最近写入对象的元数据与缓存破坏后的文件名映射
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]Entry
	paths   map[string]string
}

// NewManifest 创建空清单
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]Entry),
		paths:   make(map[string]string),
	}
}

// Get 读取记录
func (m *Manifest) Get(name string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	return e, ok
}

// Put 写入记录
func (m *Manifest) Put(e Entry) {
	m.mu.Lock()
	m.entries[e.Name] = e
	m.mu.Unlock()
}

// Remove 删除记录
func (m *Manifest) Remove(name string) {
	m.mu.Lock()
	delete(m.entries, name)
	m.mu.Unlock()
}

// Len 记录数
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// HashedPath 读取原始名称对应的带哈希名称
func (m *Manifest) HashedPath(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.paths[name]
	return p, ok
}

// SetHashedPath 记录原始名称对应的带哈希名称
func (m *Manifest) SetHashedPath(name, hashed string) {
	m.mu.Lock()
	m.paths[name] = hashed
	m.mu.Unlock()
}

// RemoveHashedPath 删除名称映射
func (m *Manifest) RemoveHashedPath(name string) {
	m.mu.Lock()
	delete(m.paths, name)
	m.mu.Unlock()
}

// Load 从 JSON 文件加载，文件不存在时保持为空
func (m *Manifest) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if f.Version != manifestVersion {
		return fmt.Errorf("unsupported manifest version %q in %s", f.Version, path)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range f.Paths {
		m.paths[k] = v
	}
	for k, v := range f.Entries {
		m.entries[k] = v
	}
	return nil
}

// Save 以 JSON 写入文件
func (m *Manifest) Save(path string) error {
	m.mu.RLock()
	f := manifestFile{
		Version: manifestVersion,
		Paths:   make(map[string]string, len(m.paths)),
		Entries: make(map[string]Entry, len(m.entries)),
	}
	for k, v := range m.paths {
		f.Paths[k] = v
	}
	for k, v := range m.entries {
		f.Entries[k] = v
	}
	m.mu.RUnlock()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Preload 用远端 bucket 的列表填充清单
func (m *Manifest) Preload(ctx context.Context, remote RemoteStore, prefix string) (int, error) {
	infos, err := remote.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	for _, info := range infos {
		m.Put(Entry{
			Name:         info.Key,
			LastModified: info.LastModified,
			Size:         info.Size,
			ETag:         info.ETag,
		})
	}
	return len(infos), nil
}

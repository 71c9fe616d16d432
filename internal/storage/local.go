package storage

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileSystemStorage 本地目录存储，目录结构与对象名称一一对应
type FileSystemStorage struct {
	Location string
	BaseURL  string
	FileMode os.FileMode
	DirMode  os.FileMode
}

// NewFileSystemStorage 创建本地存储
func NewFileSystemStorage(location, baseURL string) *FileSystemStorage {
	return &FileSystemStorage{
		Location: location,
		BaseURL:  baseURL,
		FileMode: 0644,
		DirMode:  0755,
	}
}

// Path 返回名称对应的本地路径
func (s *FileSystemStorage) Path(name string) (string, error) {
	rel, err := NormalizeName("", name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Location, filepath.FromSlash(rel)), nil
}

// Save 写入文件，已存在时覆盖
func (s *FileSystemStorage) Save(name string, r io.Reader) (string, error) {
	name = CleanName(name)
	full, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), s.DirMode); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), s.FileMode); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return name, nil
}

// Open 打开文件
func (s *FileSystemStorage) Open(name string) (*os.File, error) {
	full, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Exists 判断文件是否存在
func (s *FileSystemStorage) Exists(name string) (bool, error) {
	full, err := s.Path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Delete 删除文件，不存在时忽略
func (s *FileSystemStorage) Delete(name string) error {
	full, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ModifiedTime 返回文件修改时间
func (s *FileSystemStorage) ModifiedTime(name string) (time.Time, error) {
	full, err := s.Path(name)
	if err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(full)
	if err != nil {
		return time.Time{}, err
	}
	return fi.ModTime(), nil
}

// URL 返回文件的访问地址
func (s *FileSystemStorage) URL(name string) string {
	return joinURL(s.BaseURL, name)
}

func joinURL(base, name string) string {
	name = strings.TrimPrefix(CleanName(name), "/")
	escaped := (&url.URL{Path: name}).EscapedPath()
	if base == "" {
		return "/" + escaped
	}
	if strings.HasSuffix(base, "/") {
		return base + escaped
	}
	return base + "/" + escaped
}

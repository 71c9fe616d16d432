package storage

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
	"k8s.io/klog/v2"
)

const hashLength = 12

var cssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`url\(['"]{0,1}\s*(.*?)["']{0,1}\)`),
	regexp.MustCompile(`@import\s*["']\s*(.*?)["']`),
}

// HashedNames 原始名称到带哈希名称的缓存
type HashedNames struct {
	cache *ttlcache.Cache[string, string]
}

// NewHashedNames 创建缓存，ttl 为 0 时不过期
func NewHashedNames(ttl time.Duration) *HashedNames {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	return &HashedNames{
		cache: ttlcache.New[string, string](ttlcache.WithTTL[string, string](ttl)),
	}
}

func hashedCacheKey(name string) string {
	return "staticfiles:" + strconv.FormatUint(xxhash.Sum64String(name), 16)
}

// Get 读取缓存
func (h *HashedNames) Get(name string) (string, bool) {
	item := h.cache.Get(hashedCacheKey(name))
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// Set 写入缓存
func (h *HashedNames) Set(name, hashed string) {
	h.cache.Set(hashedCacheKey(name), hashed, ttlcache.DefaultTTL)
}

// Forget 删除缓存
func (h *HashedNames) Forget(name string) {
	h.cache.Delete(hashedCacheKey(name))
}

// Len 缓存条目数
func (h *HashedNames) Len() int {
	return h.cache.Len()
}

// HashedName 在扩展名前插入内容 md5 的前 12 位，如 css/site.css -> css/site.0123456789ab.css
func HashedName(name string, content []byte) string {
	sum := md5.Sum(content)
	hash := hex.EncodeToString(sum[:])[:hashLength]
	dir, file := path.Split(name)
	ext := path.Ext(file)
	root := strings.TrimSuffix(file, ext)
	return dir + root + "." + hash + ext
}

// Processed PostProcess 的单条结果
type Processed struct {
	Original  string
	Hashed    string
	Rewritten bool
}

// hashedNameFor 返回名称对应的带哈希名称，依次查缓存、清单，最后读取内容计算
func (s *CachedStaticStorage) hashedNameFor(ctx context.Context, name string) (string, error) {
	name = CleanName(name)
	if hashed, ok := s.hashed.Get(name); ok {
		return hashed, nil
	}
	if hashed, ok := s.manifest.HashedPath(name); ok {
		s.hashed.Set(name, hashed)
		return hashed, nil
	}

	data, err := s.readAll(ctx, name)
	if err != nil {
		return "", fmt.Errorf("the file %q could not be found: %w", name, err)
	}
	hashed := HashedName(name, data)
	s.hashed.Set(name, hashed)
	return hashed, nil
}

func (s *CachedStaticStorage) readAll(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// URL 返回带哈希的访问地址，保留原始地址中的查询串与片段
func (s *CachedStaticStorage) URL(ctx context.Context, name string) (string, error) {
	clean, suffix := splitURLSuffix(name)
	hashed, err := s.hashedNameFor(ctx, clean)
	if err != nil {
		return "", err
	}
	return joinURL(s.baseURL, hashed) + suffix, nil
}

// PostProcess 为收集到的文件生成带哈希的副本，CSS 中的 url()/@import 引用改写为带哈希的名称
func (s *CachedStaticStorage) PostProcess(ctx context.Context, names []string) ([]Processed, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	results := make([]Processed, 0, len(sorted))
	for _, name := range sorted {
		name = CleanName(name)
		original, err := s.readAll(ctx, name)
		if err != nil {
			return results, err
		}
		hashed := HashedName(name, original)

		content := original
		rewritten := false
		if path.Ext(name) == ".css" {
			content, err = s.rewriteCSS(ctx, name, original)
			if err != nil {
				return results, err
			}
			rewritten = !bytes.Equal(content, original)
		}

		saved, err := s.Save(ctx, hashed, bytes.NewReader(content))
		if err != nil {
			return results, err
		}
		s.hashed.Set(name, saved)
		s.manifest.SetHashedPath(name, saved)
		klog.V(6).Infof("storage: post-processed %s -> %s", name, saved)
		results = append(results, Processed{Original: name, Hashed: saved, Rewritten: rewritten})
	}
	return results, nil
}

func (s *CachedStaticStorage) rewriteCSS(ctx context.Context, name string, content []byte) ([]byte, error) {
	var firstErr error
	for _, pattern := range cssPatterns {
		content = pattern.ReplaceAllFunc(content, func(match []byte) []byte {
			if firstErr != nil {
				return match
			}
			sub := pattern.FindSubmatch(match)
			if len(sub) < 2 {
				return match
			}
			replaced, err := s.convertReference(ctx, name, string(match), string(sub[1]))
			if err != nil {
				firstErr = err
				return match
			}
			return []byte(replaced)
		})
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return content, nil
}

// convertReference 将 CSS 中的一个引用替换为带哈希的相对地址
func (s *CachedStaticStorage) convertReference(ctx context.Context, cssName, matched, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") || strings.HasPrefix(ref, "//") {
		return matched, nil
	}

	clean, suffix := splitURLSuffix(ref)
	target := path.Join(path.Dir(cssName), clean)
	hashed, err := s.hashedNameFor(ctx, target)
	if err != nil {
		return "", err
	}

	relative := path.Join(path.Dir(clean), path.Base(hashed)) + suffix
	if strings.HasPrefix(matched, "@import") {
		return fmt.Sprintf(`@import "%s"`, relative), nil
	}
	return fmt.Sprintf(`url("%s")`, relative), nil
}

func splitURLSuffix(ref string) (string, string) {
	if idx := strings.IndexAny(ref, "?#"); idx >= 0 {
		return ref[:idx], ref[idx:]
	}
	return ref, ""
}

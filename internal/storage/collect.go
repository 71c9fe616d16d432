package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// DefaultIgnorePatterns collectstatic 默认忽略的文件
var DefaultIgnorePatterns = []string{"CVS", ".*", "*~"}

// Summary 一次收集的统计
type Summary struct {
	Copied        int
	Skipped       int
	Bytes         int64
	PostProcessed int
	Names         []string
}

func (s Summary) String() string {
	return fmt.Sprintf("%d static files copied (%s), %d unmodified, %d post-processed",
		s.Copied, humanize.Bytes(uint64(s.Bytes)), s.Skipped, s.PostProcessed)
}

// Collector 将源目录中的静态文件收集到 CachedStaticStorage
type Collector struct {
	storage        *CachedStaticStorage
	IgnorePatterns []string
	DryRun         bool
	PostProcess    bool
}

// NewCollector 创建收集器
func NewCollector(storage *CachedStaticStorage) *Collector {
	return &Collector{
		storage:        storage,
		IgnorePatterns: DefaultIgnorePatterns,
		PostProcess:    true,
	}
}

func (c *Collector) ignored(name string) bool {
	for _, pattern := range c.IgnorePatterns {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Collect 遍历 srcDir 并保存每个文件；源文件未比清单记录更新时跳过
func (c *Collector) Collect(ctx context.Context, srcDir string) (*Summary, error) {
	summary := &Summary{}
	var names []string

	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != srcDir && c.ignored(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", srcDir, err)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		full := filepath.Join(srcDir, filepath.FromSlash(name))
		fi, err := os.Stat(full)
		if err != nil {
			return summary, err
		}

		if c.unmodified(ctx, name, fi) {
			klog.V(6).Infof("collectstatic: skipping %s (not modified)", name)
			summary.Skipped++
			continue
		}
		if c.DryRun {
			klog.Infof("collectstatic: pretending to copy %s (%s)", name, humanize.Bytes(uint64(fi.Size())))
			summary.Copied++
			summary.Bytes += fi.Size()
			summary.Names = append(summary.Names, name)
			continue
		}

		f, err := os.Open(full)
		if err != nil {
			return summary, err
		}
		saved, err := c.storage.Save(ctx, name, f)
		f.Close()
		if err != nil {
			return summary, fmt.Errorf("save %s: %w", name, err)
		}
		klog.V(6).Infof("collectstatic: copied %s (%s)", saved, humanize.Bytes(uint64(fi.Size())))
		summary.Copied++
		summary.Bytes += fi.Size()
		summary.Names = append(summary.Names, saved)
	}

	if c.PostProcess && !c.DryRun && len(summary.Names) > 0 {
		processed, err := c.storage.PostProcess(ctx, summary.Names)
		if err != nil {
			return summary, fmt.Errorf("post-process: %w", err)
		}
		summary.PostProcessed = len(processed)
	}
	if !c.DryRun {
		if err := c.storage.SaveManifest(); err != nil {
			return summary, fmt.Errorf("save manifest: %w", err)
		}
	}
	klog.Infof("collectstatic: %s", summary)
	return summary, nil
}

// unmodified 目标的修改时间不早于源文件时视为未修改
func (c *Collector) unmodified(ctx context.Context, name string, fi fs.FileInfo) bool {
	exists, err := c.storage.Exists(ctx, name)
	if err != nil || !exists {
		return false
	}
	modified, err := c.storage.ModifiedTime(ctx, name)
	if err != nil {
		return false
	}
	return !modified.Truncate(time.Second).Before(fi.ModTime().Truncate(time.Second))
}

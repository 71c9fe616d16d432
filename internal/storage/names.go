package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrSuspiciousOperation 名称试图访问存储位置之外的路径
var ErrSuspiciousOperation = errors.New("suspicious operation")

// CleanName 统一分隔符并规整路径，保留末尾的斜杠
func CleanName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if name == "" {
		return ""
	}
	clean := path.Clean(name)
	if clean == "." {
		return ""
	}
	if strings.HasSuffix(name, "/") && !strings.HasSuffix(clean, "/") {
		clean += "/"
	}
	return clean
}

// NormalizeName 将名称安全地拼接到 location 下，越界时返回 ErrSuspiciousOperation
func NormalizeName(location, name string) (string, error) {
	location = strings.Trim(CleanName(location), "/")
	trailing := strings.HasSuffix(name, "/")

	joined := path.Join(location, strings.TrimPrefix(CleanName(name), "/"))
	if joined == "." {
		joined = ""
	}
	if joined == ".." || strings.HasPrefix(joined, "../") ||
		(location != "" && joined != location && !strings.HasPrefix(joined, location+"/")) {
		return "", fmt.Errorf("%w: attempted access to %q denied", ErrSuspiciousOperation, name)
	}
	if trailing && joined != "" {
		joined += "/"
	}
	return joined, nil
}

// AvailableName 在名称冲突时追加 _1、_2 等后缀直到不存在
func AvailableName(ctx context.Context, name string, exists func(context.Context, string) (bool, error)) (string, error) {
	dir, file := path.Split(name)
	ext := path.Ext(file)
	root := strings.TrimSuffix(file, ext)

	candidate := name
	for count := 1; ; count++ {
		ok, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !ok {
			return candidate, nil
		}
		candidate = dir + fmt.Sprintf("%s_%d%s", root, count, ext)
	}
}

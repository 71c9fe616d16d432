package storage

import (
	"fmt"
	"time"
)

// TimestampFormat 远端 last_modified 的文本格式
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// rfc1123GMT HEAD 响应头中的时间格式
const rfc1123GMT = "Mon, 02 Jan 2006 15:04:05 GMT"

// FormatTimestamp 以 UTC 输出 TimestampFormat 文本
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp 解析 last_modified 文本并转换为本地时间
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{TimestampFormat, rfc1123GMT, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Local(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognized format", s)
}

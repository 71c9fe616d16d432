package embed

import (
	"embed"
	"io/fs"
	"os"

	"k8s.io/klog/v2"
)

//go:embed templates
var embeddedTemplates embed.FS

// GetTemplatesFS 获取模板文件系统；dir 非空时使用磁盘目录，便于开发时修改模板
func GetTemplatesFS(dir string) fs.FS {
	if dir != "" {
		klog.V(6).Infof("使用磁盘模板目录: %s", dir)
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// embed 的目录在编译期确定，不会失败
		panic(err)
	}
	return sub
}

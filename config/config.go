package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Static    StaticConfig    `yaml:"static"`
	Templates TemplatesConfig `yaml:"templates"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
	Mode string `yaml:"mode" env:"GIN_MODE"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type" env:"DB_TYPE"` // sqlite, mysql
	DSN  string `yaml:"dsn" env:"DB_DSN"`
}

// StorageConfig 远端静态资源存储配置
type StorageConfig struct {
	Backend               string        `yaml:"backend" env:"STATIC_STORAGE_BACKEND"` // s3, azure, memory
	BucketName            string        `yaml:"bucket_name" env:"STATIC_STORAGE_BUCKET_NAME"`
	Location              string        `yaml:"location" env:"STATIC_STORAGE_LOCATION"`
	Region                string        `yaml:"region" env:"AWS_REGION"`
	Profile               string        `yaml:"profile" env:"AWS_PROFILE"`
	Endpoint              string        `yaml:"endpoint" env:"S3_ENDPOINT"`
	PathStyle             bool          `yaml:"path_style" env:"S3_PATH_STYLE"`
	ACL                   string        `yaml:"acl" env:"STATIC_STORAGE_ACL"`
	CacheControl          string        `yaml:"cache_control" env:"STATIC_STORAGE_CACHE_CONTROL"`
	AzureConnectionString string        `yaml:"azure_connection_string" env:"AZURE_STORAGE_CONNECTION_STRING"`
	FileOverwrite         bool          `yaml:"file_overwrite" env:"STATIC_STORAGE_FILE_OVERWRITE"`
	PreloadMetadata       bool          `yaml:"preload_metadata" env:"STATIC_STORAGE_PRELOAD_METADATA"`
	HashedNameTTL         time.Duration `yaml:"hashed_name_ttl" env:"STATIC_HASHED_NAME_TTL"`
}

// StaticConfig 静态资源收集与本地缓存配置
type StaticConfig struct {
	Root         string `yaml:"root" env:"STATIC_ROOT"`
	CacheDir     string `yaml:"cache_dir" env:"STATIC_CACHE_DIR"`
	URL          string `yaml:"url" env:"STATIC_URL"`
	ManifestPath string `yaml:"manifest_path" env:"STATIC_MANIFEST_PATH"`
}

type TemplatesConfig struct {
	Dir string `yaml:"dir" env:"TEMPLATE_DIR"` // 为空时使用内嵌模板
}

var (
	cfg  *Config
	once sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		c, err := Load(os.Getenv("CONFIG_PATH"))
		if err != nil {
			klog.Errorf("加载配置失败，使用默认配置: %v", err)
			c = Default()
		}
		cfg = c
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/app.db",
		},
		Storage: StorageConfig{
			Backend:       "memory",
			FileOverwrite: true,
			ACL:           "public-read",
		},
		Static: StaticConfig{
			Root:     "./static",
			CacheDir: "./data/static",
			URL:      "/static/",
		},
	}
}

// Load 读取 YAML 配置文件，再用环境变量覆盖；文件不存在时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	// 环境变量优先级高于配置文件
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if config.Static.ManifestPath == "" {
		config.Static.ManifestPath = filepath.Join(config.Static.CacheDir, "staticfiles.json")
	}
	return config, nil
}

// Save 以 YAML 格式写入配置文件
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

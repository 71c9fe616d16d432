package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appconfig "github.com/hello-base/ohashi/config"
	"k8s.io/klog/v2"
)

// ErrImproperlyConfigured 存储配置缺失或不合法
var ErrImproperlyConfigured = errors.New("improperly configured")

// NewRemoteStore 根据配置创建远端对象存储
func NewRemoteStore(ctx context.Context, cfg appconfig.StorageConfig) (RemoteStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		klog.V(6).Infof("storage: using in-memory remote store")
		return NewMemoryStore(), nil
	case "s3":
		if cfg.BucketName == "" {
			return nil, fmt.Errorf("%w: STATIC_STORAGE_BUCKET_NAME is required for s3 backend", ErrImproperlyConfigured)
		}
		var opts []S3Option
		if cfg.Region != "" {
			opts = append(opts, WithS3Region(cfg.Region))
		}
		if cfg.Profile != "" {
			opts = append(opts, WithS3Profile(cfg.Profile))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, WithS3Endpoint(cfg.Endpoint))
		}
		if cfg.PathStyle {
			opts = append(opts, WithS3PathStyle())
		}
		client, err := NewS3Client(ctx, opts...)
		if err != nil {
			return nil, err
		}
		store := NewS3Store(client, cfg.BucketName)
		if cfg.ACL != "" {
			store.SetACL(cfg.ACL)
		}
		if cfg.CacheControl != "" {
			store.SetCacheControl(cfg.CacheControl)
		}
		klog.V(6).Infof("storage: using s3 bucket %s", cfg.BucketName)
		return store, nil
	case "azure":
		if cfg.BucketName == "" {
			return nil, fmt.Errorf("%w: STATIC_STORAGE_BUCKET_NAME is required for azure backend", ErrImproperlyConfigured)
		}
		if cfg.AzureConnectionString == "" {
			return nil, fmt.Errorf("%w: AZURE_STORAGE_CONNECTION_STRING is required for azure backend", ErrImproperlyConfigured)
		}
		klog.V(6).Infof("storage: using azure container %s", cfg.BucketName)
		return NewAzureStoreFromConnectionString(cfg.AzureConnectionString, cfg.BucketName)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrImproperlyConfigured, cfg.Backend)
	}
}

// NewFromConfig 创建 CachedStaticStorage，并按配置加载清单、预取远端元数据
func NewFromConfig(ctx context.Context, cfg *appconfig.Config, opts ...Option) (*CachedStaticStorage, error) {
	remote, err := NewRemoteStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	local := NewFileSystemStorage(cfg.Static.CacheDir, cfg.Static.URL)
	s := NewCachedStaticStorage(remote, local, append([]Option{
		WithLocation(cfg.Storage.Location),
		WithBaseURL(cfg.Static.URL),
		WithFileOverwrite(cfg.Storage.FileOverwrite),
		WithManifestPath(cfg.Static.ManifestPath),
		WithHashedNameTTL(cfg.Storage.HashedNameTTL),
	}, opts...)...)
	if err := s.LoadManifest(); err != nil {
		return nil, err
	}
	if cfg.Storage.PreloadMetadata {
		if err := s.PreloadMetadata(ctx); err != nil {
			return nil, fmt.Errorf("preload metadata: %w", err)
		}
	}
	return s, nil
}

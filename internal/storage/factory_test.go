package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	appconfig "github.com/hello-base/ohashi/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRemoteStoreMemory(t *testing.T) {
	store, err := NewRemoteStore(context.Background(), appconfig.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	_, ok := store.(*MemoryStore)
	assert.True(t, ok)
}

func TestNewRemoteStoreRequiresBucket(t *testing.T) {
	for _, backend := range []string{"s3", "azure"} {
		_, err := NewRemoteStore(context.Background(), appconfig.StorageConfig{Backend: backend})
		assert.ErrorIs(t, err, ErrImproperlyConfigured, backend)
	}

	_, err := NewRemoteStore(context.Background(), appconfig.StorageConfig{Backend: "azure", BucketName: "assets"})
	assert.ErrorIs(t, err, ErrImproperlyConfigured)

	_, err = NewRemoteStore(context.Background(), appconfig.StorageConfig{Backend: "ftp"})
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := appconfig.Default()
	cfg.Static.CacheDir = t.TempDir()
	cfg.Static.ManifestPath = filepath.Join(cfg.Static.CacheDir, "staticfiles.json")
	cfg.Storage.Location = "static"

	s, err := NewFromConfig(ctx, cfg)
	require.NoError(t, err)

	_, err = s.Save(ctx, "a.css", strings.NewReader("a{}"))
	require.NoError(t, err)
	require.NoError(t, s.SaveManifest())

	reopened, err := NewFromConfig(ctx, cfg)
	require.NoError(t, err)
	_, ok := reopened.Manifest().Get("static/a.css")
	assert.True(t, ok)
}

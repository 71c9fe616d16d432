package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureStore 基于 Azure Blob Storage 的 RemoteStore，container 对应 bucket
type AzureStore struct {
	client    *azblob.Client
	container string
}

// NewAzureStoreFromConnectionString 通过连接串创建 Azure 存储
func NewAzureStoreFromConnectionString(connectionString, container string) (*AzureStore, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create azure blob client: %w", err)
	}
	return NewAzureStore(client, container), nil
}

// NewAzureStore 创建绑定到指定 container 的 Azure 存储
func NewAzureStore(client *azblob.Client, container string) *AzureStore {
	return &AzureStore{client: client, container: container}
}

func (s *AzureStore) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	opts := &azblob.UploadStreamOptions{}
	if contentType != "" {
		opts.HTTPHeaders = &blob.HTTPHeaders{BlobContentType: &contentType}
	}
	_, err := s.client.UploadStream(ctx, s.container, key, r, opts)
	return err
}

func (s *AzureStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *AzureStore) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	props, err := s.client.ServiceClient().
		NewContainerClient(s.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		return nil, err
	}
	info := &ObjectInfo{
		Key:          key,
		LastModified: FormatTimestamp(derefTime(props.LastModified)),
		ETag:         etagString(props.ETag),
	}
	if props.ContentLength != nil {
		info.Size = *props.ContentLength
	}
	if props.ContentType != nil {
		info.ContentType = *props.ContentType
	}
	return info, nil
}

func (s *AzureStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Head(ctx, key)
	if err != nil {
		if s.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AzureStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			info := ObjectInfo{Key: *item.Name}
			if p := item.Properties; p != nil {
				info.LastModified = FormatTimestamp(derefTime(p.LastModified))
				info.ETag = etagString(p.ETag)
				if p.ContentLength != nil {
					info.Size = *p.ContentLength
				}
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

func (s *AzureStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	return err
}

func (s *AzureStore) IsNotFoundError(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound)
}

func etagString(etag *azcore.ETag) string {
	if etag == nil {
		return ""
	}
	return string(*etag)
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

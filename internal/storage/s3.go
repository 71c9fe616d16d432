package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type s3Config struct {
	region    string
	profile   string
	endpoint  string
	pathStyle bool
}

// S3Option 构建 S3 客户端的选项
type S3Option func(*s3Config)

// WithS3Region 覆盖区域，默认沿用环境变量/共享配置
func WithS3Region(region string) S3Option {
	return func(c *s3Config) { c.region = region }
}

// WithS3Profile 指定共享配置 profile
func WithS3Profile(profile string) S3Option {
	return func(c *s3Config) { c.profile = profile }
}

// WithS3Endpoint 使用自定义端点（MinIO、Ceph 等）
func WithS3Endpoint(url string) S3Option {
	return func(c *s3Config) { c.endpoint = url }
}

// WithS3PathStyle 使用 path-style 寻址
func WithS3PathStyle() S3Option {
	return func(c *s3Config) { c.pathStyle = true }
}

// NewS3Client 加载 AWS 配置并创建 S3 客户端
func NewS3Client(ctx context.Context, opts ...S3Option) (*s3.Client, error) {
	var c s3Config
	for _, opt := range opts {
		opt(&c)
	}

	var loadOpts []func(*config.LoadOptions) error
	if c.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(c.region))
	}
	if c.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(c.profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
		}
		o.UsePathStyle = c.pathStyle
	}), nil
}

// S3Store 基于 AWS S3 的 RemoteStore
type S3Store struct {
	client       *s3.Client
	uploader     *manager.Uploader
	bucket       string
	acl          types.ObjectCannedACL
	cacheControl string
}

// NewS3Store 创建绑定到指定 bucket 的 S3 存储
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   bucket,
		acl:      types.ObjectCannedACLPublicRead,
	}
}

// SetCacheControl 设置上传对象的 Cache-Control 头
func (s *S3Store) SetCacheControl(v string) {
	s.cacheControl = v
}

// SetACL 设置上传对象的 ACL，空值表示不设置
func (s *S3Store) SetACL(acl string) {
	s.acl = types.ObjectCannedACL(acl)
}

// Bucket 返回 bucket 名称
func (s *S3Store) Bucket() string {
	return s.bucket
}

func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if s.acl != "" {
		input.ACL = s.acl
	}
	if s.cacheControl != "" {
		input.CacheControl = aws.String(s.cacheControl)
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *S3Store) Head(ctx context.Context, key string) (*ObjectInfo, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return &ObjectInfo{
		Key:          key,
		Size:         aws.ToInt64(resp.ContentLength),
		LastModified: FormatTimestamp(aws.ToTime(resp.LastModified)),
		ETag:         aws.ToString(resp.ETag),
		ContentType:  aws.ToString(resp.ContentType),
	}, nil
}

func (s *S3Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if s.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			infos = append(infos, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: FormatTimestamp(aws.ToTime(obj.LastModified)),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	return infos, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// IsNotFoundError HEAD 请求的 404 没有具体类型，需同时检查错误码
func (s *S3Store) IsNotFoundError(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

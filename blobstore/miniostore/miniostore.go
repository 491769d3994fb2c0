// Package miniostore provides a MinIO implementation of the
// blobstore.Store interface.
package miniostore

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/code19m/errx"
	"github.com/geodepot/geodepot/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const codeNoSuchKey = "NoSuchKey"

// Client implements the blobstore.Store interface using MinIO.
type Client struct {
	client *minio.Client
	bucket string
}

// New creates a new MinIO blobstore client.
func New(cfg Config) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &Client{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Put writes the artifact at the specified path, replacing any existing
// object under the same key. Content type is detected from the content.
func (c *Client) Put(ctx context.Context, path string, reader io.Reader) (*blobstore.ObjectInfo, error) {
	// Buffer the content to detect its type and size. Artifacts handled
	// by this service are small enough for that to be acceptable.
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	contentType := http.DetectContentType(data)
	size := int64(len(data))

	info, err := c.client.PutObject(ctx, c.bucket, path, bytes.NewReader(data), size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &blobstore.ObjectInfo{
		Path:         path,
		Size:         info.Size,
		ContentType:  contentType,
		LastModified: info.LastModified,
	}, nil
}

// Get retrieves an artifact and its metadata from the specified path.
func (c *Client) Get(ctx context.Context, path string) (*blobstore.Object, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, wrapMinioError(err, path)
	}

	return &blobstore.Object{
		Content: obj,
		Info: blobstore.ObjectInfo{
			Path:         path,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			LastModified: stat.LastModified,
		},
	}, nil
}

// Delete removes the artifact at the specified path.
func (c *Client) Delete(ctx context.Context, path string) error {
	exists, err := c.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return errx.New(
			"artifact not found",
			errx.WithCode(blobstore.CodeBlobNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": path}),
		)
	}

	if err := c.client.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return wrapMinioError(err, path)
	}
	return nil
}

// Exists checks if an artifact exists at the specified path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.client.StatObject(ctx, c.bucket, path, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == codeNoSuchKey {
			return false, nil
		}
		return false, errx.Wrap(err)
	}
	return true, nil
}

// List returns the paths of all stored artifacts under the given prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	paths := make([]string, 0)
	for obj := range c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errx.Wrap(obj.Err)
		}
		paths = append(paths, obj.Key)
	}

	sort.Strings(paths)
	return paths, nil
}

// wrapMinioError converts MinIO errors to blobstore error codes.
func wrapMinioError(err error, path string) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == codeNoSuchKey {
		return errx.New(
			"artifact not found",
			errx.WithCode(blobstore.CodeBlobNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	return errx.Wrap(err)
}

package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	cos "github.com/tencentyun/cos-go-sdk-v5"
)

type cosStore struct {
	cli *cos.Client
	ttl time.Duration
	sid string
	sk  string
}

func openCOS(_ context.Context, c Config) (Store, error) {
	bucketURL, err := cosBucketURL(c)
	if err != nil {
		return nil, err
	}
	cli := cos.NewClient(&cos.BaseURL{BucketURL: bucketURL}, &http.Client{Transport: &cos.AuthorizationTransport{SecretID: c.AccessKey, SecretKey: c.SecretKey}})
	return &cosStore{cli: cli, ttl: ttlOrDefault(c.SignedURLTTL), sid: c.AccessKey, sk: c.SecretKey}, nil
}

// cosBucketURL uses the endpoint when set (path-style if the host does not
// name the bucket), otherwise the public regional host.
func cosBucketURL(c Config) (*url.URL, error) {
	if c.Endpoint == "" {
		return url.Parse(fmt.Sprintf("https://%s.cos.%s.myqcloud.com", c.Bucket, c.Region))
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(u.Host, c.Bucket) && !strings.HasSuffix(u.Path, "/"+c.Bucket) {
		u.Path = "/" + c.Bucket
	}
	return u, nil
}

func (s *cosStore) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	opt := &cos.ObjectPutOptions{}
	if contentType != "" {
		opt.ObjectPutHeaderOptions = &cos.ObjectPutHeaderOptions{ContentType: contentType}
	}
	_, err := s.cli.Object.Put(ctx, sanitizeKey(key), r, opt)
	return err
}

func (s *cosStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := s.cli.Object.Get(ctx, sanitizeKey(key), nil)
	if cos.IsNotFoundError(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *cosStore) SignedURL(ctx context.Context, key string, method string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.ttl
	}
	m := http.MethodGet
	switch strings.ToUpper(method) {
	case http.MethodPut:
		m = http.MethodPut
	case http.MethodDelete:
		m = http.MethodDelete
	}
	u, err := s.cli.Object.GetPresignedURL(ctx, m, sanitizeKey(key), s.sid, s.sk, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *cosStore) Delete(ctx context.Context, key string) error {
	_, err := s.cli.Object.Delete(ctx, sanitizeKey(key))
	return err
}

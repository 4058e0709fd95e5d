package s3

import (
	"context"
	"fmt"
	"io"
	"itad/config"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// OSSStorage keeps objects in an aliyun OSS bucket.
type OSSStorage struct {
	Bucket *oss.Bucket
	// BaseURL is the public address of the bucket, objects are served under BaseURL/<key>.
	BaseURL string
}

func NewOSSStorage(cfg config.OSSConfig) (*OSSStorage, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "dummy"
	}
	bucket, err := BuildBucket(endpoint, cfg.AccessKey, cfg.SecretKey, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	return &OSSStorage{Bucket: bucket, BaseURL: fmt.Sprintf("https://%s.%s", cfg.Bucket, host)}, nil
}

func BuildBucket(endpoint, accesskey, secretKey, bucketName string) (*oss.Bucket, error) {
	// endpoint http://oss-cn-hangzhou.aliyuncs.com
	cli, err := oss.New(endpoint, accesskey, secretKey, oss.HTTPClient(nil))
	if err != nil {
		return nil, err
	}

	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, err
	}
	return bucket, nil
}

func (o *OSSStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	sp := startSpan(ctx, "put-object", key)
	if sp != nil {
		defer sp.Finish()
	}

	err := o.Bucket.PutObject(key, r, oss.ContentType(contentType))
	if sp != nil {
		ext.Error.Set(sp, err != nil)
	}
	if err != nil {
		return "", err
	}
	return o.BaseURL + "/" + key, nil
}

// startSpan returns nil when ctx carries no span.
func startSpan(ctx context.Context, operation, key string) opentracing.Span {
	if ctx == nil {
		return nil
	}
	parentSpan := opentracing.SpanFromContext(ctx)
	if parentSpan == nil {
		return nil
	}
	sp := parentSpan.Tracer().StartSpan(operation, opentracing.ChildOf(parentSpan.Context()))
	sp.SetTag("object-key", key)
	return sp
}

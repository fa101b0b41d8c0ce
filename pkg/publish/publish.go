// Package publish uploads a rendered site to S3 or an S3-compatible store
// such as MinIO.
//
// Credentials come from the default AWS chain (environment, shared config,
// instance role). Objects are written under an optional key prefix with a
// content type derived from the file extension; transient failures are
// retried with backoff.
package publish

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/hivedoc/pkg/cache"
	"github.com/matzehuels/hivedoc/pkg/errors"
)

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

// Config describes the destination bucket.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible stores
	Prefix    string
	PathStyle bool
}

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads directories to one bucket.
type Publisher struct {
	client ObjectPutter
	bucket string
	prefix string
	logger *log.Logger
}

// Result summarises an upload.
type Result struct {
	Keys     []string
	Bytes    int64
	Duration time.Duration
}

// New creates a publisher backed by an S3 client built from the default AWS
// configuration.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Publisher, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient creates a publisher using client.
func NewWithClient(client ObjectPutter, cfg Config, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.Default()
	}
	return &Publisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix, logger: logger}
}

// Publish uploads every regular file under dir. Files are sent in sorted
// order and the first failure stops the upload.
func (p *Publisher) Publish(ctx context.Context, dir string) (*Result, error) {
	start := time.Now()

	var files []string
	err := fs.WalkDir(os.DirFS(dir), ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "scan %s", dir)
	}
	sort.Strings(files)

	res := &Result{}
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", rel)
		}
		key := ObjectKey(p.prefix, rel)
		if err := p.put(ctx, key, ContentType(rel), data); err != nil {
			return nil, err
		}
		p.logger.Debug("uploaded", "key", key, "size", len(data))
		res.Keys = append(res.Keys, key)
		res.Bytes += int64(len(data))
	}
	res.Duration = time.Since(start)
	return res, nil
}

func (p *Publisher) put(ctx context.Context, key, contentType string, data []byte) error {
	err := cache.RetryWithBackoff(ctx, func() error {
		_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil && transient(err) {
			p.logger.Warn("upload failed, retrying", "key", key, "err", err)
			return cache.Retryable(err)
		}
		return err
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeExternalProcess, err, "upload s3://%s/%s", p.bucket, key)
	}
	return nil
}

// transient reports whether a failed request is worth repeating: throttling,
// server errors and failures that never got a response.
func transient(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var status interface{ HTTPStatusCode() int }
	if stderrors.As(err, &status) {
		code := status.HTTPStatusCode()
		return code == 429 || code >= 500
	}
	return true
}

// ObjectKey joins prefix and a slash-separated relative path.
func ObjectKey(prefix, rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// ContentType returns the MIME type for name, defaulting to
// application/octet-stream.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

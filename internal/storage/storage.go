package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// PutOptions conveys upload destination metadata.
type PutOptions struct {
	Bucket      string
	Key         string
	ContentType string
}

// Service stores company logos in remote object storage.
type Service interface {
	PutObject(ctx context.Context, body io.Reader, opts PutOptions) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// LogoKey builds a fresh object key for a logo of the given job.
func LogoKey(prefix, jobID, ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(strings.Trim(prefix, "/"), jobID, uuid.NewString()+ext)
}

// PublicURL returns the URL clients use to fetch key. A configured base URL
// (CDN or custom endpoint) wins over the virtual-hosted S3 address.
func PublicURL(baseURL, bucket, region, key string) string {
	if base := strings.TrimRight(strings.TrimSpace(baseURL), "/"); base != "" {
		return base + "/" + key
	}
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

// KeyFromURL reverses PublicURL. It reports false for URLs that do not point
// into the given bucket, such as logos hosted elsewhere.
func KeyFromURL(rawURL, baseURL, bucket, region string) (string, bool) {
	if rawURL == "" || bucket == "" {
		return "", false
	}
	prefix := PublicURL(baseURL, bucket, region, "")
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if u, err := url.Parse(key); err == nil {
		key = u.Path
	}
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", false
	}
	return key, true
}

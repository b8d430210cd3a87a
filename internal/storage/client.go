// Package storage resolves lecture PDF references into local files.
// A reference may be an s3://bucket/key object in the configured R2/S3
// bucket, an http(s) URL, or a path on the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Client fetches lecture source material. The zero-ish client returned when
// object storage is unconfigured still serves http(s) and local references.
type Client struct {
	s3Client   *s3.Client
	httpClient *http.Client
	bucketName string
}

// New creates a storage client. When the object-storage environment is not
// fully configured the client is still returned, with s3:// fetches disabled.
func New(accountID, bucketName, accessKeyID, secretAccessKey string) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		bucketName: bucketName,
	}

	if accountID == "" || bucketName == "" || accessKeyID == "" || secretAccessKey == "" {
		log.Println("WARN: object storage not fully configured (STORAGE_ACCOUNT_ID, STORAGE_BUCKET_NAME, STORAGE_ACCESS_KEY_ID, STORAGE_SECRET_ACCESS_KEY); s3:// lecture references will fail")
		return c, nil
	}

	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for object storage: %w", err)
	}

	c.s3Client = s3.NewFromConfig(cfg)
	log.Printf("INFO: object storage client initialized for bucket '%s'", bucketName)
	return c, nil
}

// Fetch resolves ref to a readable local file. The returned cleanup removes
// any temporary file Fetch created and is safe to call unconditionally.
func (c *Client) Fetch(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}
	switch {
	case strings.HasPrefix(ref, "s3://"):
		return c.fetchObject(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return c.fetchURL(ctx, ref)
	default:
		// Local path; existence is the extractor's concern.
		return ref, noop, nil
	}
}

func (c *Client) fetchObject(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}
	if c.s3Client == nil {
		return "", noop, fmt.Errorf("object storage not configured, cannot fetch %s", ref)
	}

	bucket, key, err := splitObjectRef(ref)
	if err != nil {
		return "", noop, err
	}
	if bucket == "" {
		bucket = c.bucketName
	}

	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", noop, fmt.Errorf("failed to fetch object %s: %w", ref, err)
	}
	defer out.Body.Close()

	return saveTempFile(out.Body, filepath.Base(key))
}

func (c *Client) fetchURL(ctx context.Context, ref string) (string, func(), error) {
	noop := func() {}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return "", noop, fmt.Errorf("invalid source URL %s: %w", ref, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", noop, fmt.Errorf("failed to download %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", noop, fmt.Errorf("source not found: %s (404)", ref)
	}
	if resp.StatusCode != http.StatusOK {
		return "", noop, fmt.Errorf("failed to download %s: status %d", ref, resp.StatusCode)
	}

	name := filepath.Base(req.URL.Path)
	if name == "/" || name == "." {
		name = "lecture.pdf"
	}
	return saveTempFile(resp.Body, name)
}

// splitObjectRef parses s3://bucket/key. An empty bucket segment falls back
// to the configured default bucket.
func splitObjectRef(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid object reference %s: %w", ref, err)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("object reference %s has no key", ref)
	}
	return u.Host, key, nil
}

// saveTempFile streams content to a uniquely named file under the OS temp dir.
func saveTempFile(content io.Reader, filename string) (string, func(), error) {
	noop := func() {}
	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+"_"+filename)

	f, err := os.Create(tempPath)
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tempPath)
		return "", noop, fmt.Errorf("failed to save temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return "", noop, fmt.Errorf("failed to save temporary file: %w", err)
	}

	cleanup := func() {
		if err := os.Remove(tempPath); err != nil {
			log.Printf("WARN: failed to remove temporary file %s: %v", tempPath, err)
		}
	}
	return tempPath, cleanup, nil
}

package script

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Scheme identifies where a script path points.
type Scheme string

const (
	SchemeLocal Scheme = "local"
	SchemeFile  Scheme = "file"
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
	SchemeS3    Scheme = "s3"
)

// DetectScheme classifies a script path by its URL prefix. Paths without a
// scheme are local filesystem paths.
func DetectScheme(path string) Scheme {
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "s3://"):
		return SchemeS3
	case strings.HasPrefix(lower, "https://"):
		return SchemeHTTPS
	case strings.HasPrefix(lower, "http://"):
		return SchemeHTTP
	case strings.HasPrefix(lower, "file://"):
		return SchemeFile
	default:
		return SchemeLocal
	}
}

// S3Options carries explicit S3 credentials and endpoint overrides. The
// zero value falls back to the ambient AWS configuration chain.
type S3Options struct {
	AccessKey string
	SecretKey string
	Region    string
	Endpoint  string
}

// Loader reads script content from any supported scheme. MaxBytes, when
// positive, rejects scripts larger than the limit before handing their
// content onward.
type Loader struct {
	S3       S3Options
	MaxBytes int64

	// openLocal is swapped in tests.
	openLocal func(path string) (io.ReadCloser, error)
}

// NewLoader creates a loader with no size limit and ambient S3 settings.
func NewLoader() *Loader {
	return &Loader{
		openLocal: func(path string) (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// Load reads the full content of the script at path.
func (loader *Loader) Load(ctx context.Context, path string) ([]byte, error) {
	reader, err := loader.open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if loader.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(reader, loader.MaxBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if int64(len(data)) > loader.MaxBytes {
			return nil, fmt.Errorf("script %s exceeds %d bytes", path, loader.MaxBytes)
		}
		return data, nil
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (loader *Loader) open(ctx context.Context, path string) (io.ReadCloser, error) {
	switch DetectScheme(path) {
	case SchemeLocal:
		return loader.openLocal(path)

	case SchemeFile:
		return loader.openLocal(strings.TrimPrefix(path, "file://"))

	case SchemeHTTP, SchemeHTTPS:
		return openHTTPReader(ctx, path)

	case SchemeS3:
		return loader.openS3Reader(ctx, path)

	default:
		return nil, fmt.Errorf("unsupported script scheme: %s", path)
	}
}

// Expand resolves a shell-style glob pattern into a sorted list of script
// paths. Remote paths are passed through untouched since globbing only
// makes sense on the local filesystem.
func Expand(pattern string) ([]string, error) {
	if DetectScheme(pattern) != SchemeLocal {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}

// openHTTPReader fetches a script over HTTP GET.
func openHTTPReader(ctx context.Context, url string) (io.ReadCloser, error) {
	client := &http.Client{
		Timeout: 5 * time.Minute, // generous timeout for large files
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	resp, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request returned status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// parseS3URL splits s3://bucket/key into its bucket and key parts.
func parseS3URL(url string) (bucket, key string, err error) {
	path := strings.TrimPrefix(url, "s3://")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("invalid S3 URL: %s", url)
	}
	return parts[0], parts[1], nil
}

func (loader *Loader) s3Client(ctx context.Context) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if loader.S3.Region != "" {
		opts = append(opts, awsconfig.WithRegion(loader.S3.Region))
	}
	if loader.S3.AccessKey != "" && loader.S3.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(loader.S3.AccessKey, loader.S3.SecretKey, "")
		opts = append(opts, awsconfig.WithCredentialsProvider(creds))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if loader.S3.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(loader.S3.Endpoint)
			o.UsePathStyle = true // for S3-compatible services
		})
	}

	return s3.NewFromConfig(awsCfg, clientOpts...), nil
}

func (loader *Loader) openS3Reader(ctx context.Context, url string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}

	client, err := loader.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}

	return resp.Body, nil
}

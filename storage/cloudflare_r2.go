package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type CloudflareR2UploaderConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// imageCacheControl: ключи уникальны, объект по ключу никогда не меняется.
const imageCacheControl = "public, max-age=31536000, immutable"

func (c CloudflareR2UploaderConfig) missing() []string {
	var fields []string
	for name, v := range map[string]string{
		"account id":        c.AccountID,
		"access key id":     c.AccessKeyID,
		"secret access key": c.SecretAccessKey,
		"bucket name":       c.BucketName,
		"public base url":   c.PublicBaseURL,
	} {
		if strings.TrimSpace(v) == "" {
			fields = append(fields, name)
		}
	}
	slices.Sort(fields)
	return fields
}

type cloudflareR2Uploader struct {
	client *s3.Client
	bucket string
	base   *url.URL
}

func NewCloudflareR2Uploader(ctx context.Context, cfg CloudflareR2UploaderConfig) (FileUploader, error) {
	if missing := cfg.missing(); len(missing) > 0 {
		return nil, fmt.Errorf("r2 storage: missing %s", strings.Join(missing, ", "))
	}

	base, err := url.Parse(cfg.PublicBaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("r2 storage: public base url %q is not absolute", cfg.PublicBaseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + "/"

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"), // R2 принимает только регион "auto"
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 storage: load sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://" + cfg.AccountID + ".r2.cloudflarestorage.com")
	})
	return &cloudflareR2Uploader{client: client, bucket: cfg.BucketName, base: base}, nil
}

func (u *cloudflareR2Uploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	out, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         reader,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(imageCacheControl),
	})
	if err != nil {
		return nil, fmt.Errorf("r2 storage: put %s: %w", key, err)
	}

	return &UploadResult{
		Key:      key,
		Location: u.GetPublicURL(key),
		ETag:     strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

func (u *cloudflareR2Uploader) Delete(ctx context.Context, key string) error {
	if _, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("r2 storage: delete %s: %w", key, err)
	}
	return nil
}

func (u *cloudflareR2Uploader) GetPublicURL(key string) string {
	return publicURL(u.base, key)
}

// publicURL склеивает базовый URL и ключ объекта; пустая строка, если склеить нельзя.
func publicURL(base *url.URL, key string) string {
	key = strings.TrimLeft(key, "/")
	if base == nil || key == "" {
		return ""
	}
	ref, err := url.Parse(key)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

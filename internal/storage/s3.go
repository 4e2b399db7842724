// Package storage holds uploaded media in an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/sah-lishi/backend-journey/internal/config"
	"github.com/sah-lishi/backend-journey/internal/models"
)

var (
	// ErrNoFile indicates Upload was called without a local file.
	ErrNoFile = errors.New("storage: no file to upload")
	// ErrUnsupportedMedia indicates the file is neither a video nor an image.
	ErrUnsupportedMedia = errors.New("storage: unsupported media type")
)

type objectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ContentStore uploads local temp files to a bucket and deletes them by
// public id. Public ids are object keys of the form "<kind>/<uuid><ext>".
type S3ContentStore struct {
	uploader objectUploader
	deleter  objectDeleter
	bucket   string
	baseURL  string
}

// NewS3ContentStore configures a client for the bucket described by cfg.
func NewS3ContentStore(ctx context.Context, cfg config.ObjectStoreConfig) (*S3ContentStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	baseURL := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if baseURL == "" && endpoint != "" {
		baseURL = strings.TrimSuffix(endpoint, "/") + "/" + cfg.Bucket
	}

	return newContentStore(uploader, client, cfg.Bucket, baseURL), nil
}

func newContentStore(up objectUploader, del objectDeleter, bucket, baseURL string) *S3ContentStore {
	return &S3ContentStore{uploader: up, deleter: del, bucket: bucket, baseURL: baseURL}
}

// Upload stores the file at localPath and returns its asset reference. The
// local file is removed whether or not the upload succeeds.
func (s *S3ContentStore) Upload(ctx context.Context, localPath string) (*models.Asset, error) {
	if strings.TrimSpace(localPath) == "" {
		return nil, ErrNoFile
	}
	defer os.Remove(localPath)

	ext := strings.ToLower(filepath.Ext(localPath))
	contentType := contentTypeOf(ext)
	kind, ok := kindOf(contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMedia, ext)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := kind + "/" + uuid.NewString() + ext
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 storage upload %s: %w", key, err)
	}

	return &models.Asset{URL: s.publicURL(key), PublicID: key, Kind: kind}, nil
}

// Delete removes the object named by publicID. kind must match the prefix
// the object was stored under.
func (s *S3ContentStore) Delete(ctx context.Context, publicID, kind string) error {
	if publicID == "" || !strings.HasPrefix(publicID, kind+"/") {
		return fmt.Errorf("s3 storage: public id %q is not a %s asset", publicID, kind)
	}
	_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("s3 storage delete %s: %w", publicID, err)
	}
	return nil
}

func (s *S3ContentStore) publicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return s.baseURL + "/" + key
}

// mediaTypes covers formats the host mime table may not know about.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

func contentTypeOf(ext string) string {
	if ct, ok := mediaTypes[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}

func kindOf(contentType string) (string, bool) {
	switch {
	case strings.HasPrefix(contentType, "video/"):
		return models.AssetKindVideo, true
	case strings.HasPrefix(contentType, "image/"):
		return models.AssetKindImage, true
	default:
		return "", false
	}
}

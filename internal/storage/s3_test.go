package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sah-lishi/backend-journey/internal/models"
)

type fakeBucket struct {
	objects map[string]string
	types   map[string]string
	failPut bool
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]string{}, types: map[string]string{}}
}

func (b *fakeBucket) Upload(_ context.Context, in *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if b.failPut {
		return nil, errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	b.objects[key] = string(body)
	b.types[key] = aws.ToString(in.ContentType)
	return &manager.UploadOutput{Key: in.Key}, nil
}

func (b *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(b.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	return path
}

func TestUploadStoresAndRemovesLocalFile(t *testing.T) {
	bucket := newFakeBucket()
	store := newContentStore(bucket, bucket, "media", "https://cdn.example.com")

	path := writeTemp(t, "clip.MP4", "frames")
	asset, err := store.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.Kind != models.AssetKindVideo || !strings.HasPrefix(asset.PublicID, "video/") || !strings.HasSuffix(asset.PublicID, ".mp4") {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if asset.URL != "https://cdn.example.com/"+asset.PublicID {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if bucket.objects[asset.PublicID] != "frames" || bucket.types[asset.PublicID] != "video/mp4" {
		t.Fatalf("object not stored correctly: %v %v", bucket.objects, bucket.types)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected local file to be removed")
	}

	if err := store.Delete(context.Background(), asset.PublicID, models.AssetKindVideo); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(bucket.objects) != 0 {
		t.Fatal("expected object removed")
	}
}

func TestUploadFailureStillRemovesLocalFile(t *testing.T) {
	bucket := newFakeBucket()
	bucket.failPut = true
	store := newContentStore(bucket, bucket, "media", "")

	path := writeTemp(t, "avatar.png", "pixels")
	asset, err := store.Upload(context.Background(), path)
	if err == nil || asset != nil {
		t.Fatalf("expected failure, got %+v %v", asset, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected local file to be removed after failure")
	}
}

func TestUploadRejectsUnknownInput(t *testing.T) {
	store := newContentStore(newFakeBucket(), newFakeBucket(), "media", "")

	if _, err := store.Upload(context.Background(), ""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}

	path := writeTemp(t, "notes.exe", "bin")
	if _, err := store.Upload(context.Background(), path); !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("rejected files must still be removed")
	}
}

func TestDeleteChecksKindPrefix(t *testing.T) {
	store := newContentStore(newFakeBucket(), newFakeBucket(), "media", "")
	if err := store.Delete(context.Background(), "image/abc.png", models.AssetKindVideo); err == nil {
		t.Fatal("expected kind mismatch error")
	}
	if err := store.Delete(context.Background(), "", models.AssetKindImage); err == nil {
		t.Fatal("expected empty id error")
	}
}

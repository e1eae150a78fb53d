// Package storage uploads report photos to a Google Cloud Storage bucket.
package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"munidenuncia/internal/models"
)

type Options struct {
	Bucket          string
	Prefix          string // e.g. "photos/"
	PublicURL       string // e.g. "https://storage.googleapis.com"
	CredentialsJSON string // empty → application default credentials
}

type GCS struct {
	client *storage.Client
	opts   Options
}

// NewGCS prefers explicit credentials JSON and falls back to ADC
// (GOOGLE_APPLICATION_CREDENTIALS or the runtime service account).
func NewGCS(ctx context.Context, opts Options) (*GCS, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket is required")
	}
	var copts []option.ClientOption
	if creds := strings.TrimSpace(opts.CredentialsJSON); creds != "" {
		copts = append(copts, option.WithCredentialsJSON([]byte(creds)))
	}
	client, err := storage.NewClient(ctx, copts...)
	if err != nil {
		return nil, err
	}
	return &GCS{client: client, opts: opts}, nil
}

// Upload writes the photo under a random name and returns its public URL.
func (g *GCS) Upload(ctx context.Context, photo models.Photo) (string, error) {
	name := ObjectName(g.opts.Prefix, photo)
	wc := g.client.Bucket(g.opts.Bucket).Object(name).NewWriter(ctx)
	wc.ContentType = photo.ContentType
	wc.CacheControl = "public, max-age=3600"

	if _, err := wc.Write(photo.Data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return PublicURL(g.opts.PublicURL, g.opts.Bucket, name), nil
}

func (g *GCS) Close() error { return g.client.Close() }

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// safeExt is what a client extension must look like to end up in a public URL.
var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,5}$`)

// ObjectName is prefix + uuid, keeping the client's file extension when it
// is plain alphanumeric.
func ObjectName(prefix string, photo models.Photo) string {
	ext := strings.ToLower(path.Ext(photo.Name))
	if !safeExt.MatchString(ext) {
		ext = extByType[photo.ContentType]
	}
	return prefix + uuid.NewString() + ext
}

func PublicURL(base, bucket, object string) string {
	return strings.TrimRight(base, "/") + "/" + bucket + "/" + object
}

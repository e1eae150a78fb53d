package storage

import (
	"context"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/models"
)

var uuidName = `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`

func TestObjectName(t *testing.T) {
	cases := []struct {
		photo models.Photo
		ext   string
	}{
		{models.Photo{Name: "bache.JPG", ContentType: "image/jpeg"}, `\.jpg`},
		{models.Photo{Name: "plaza.webp", ContentType: "image/webp"}, `\.webp`},
		{models.Photo{Name: "noext", ContentType: "image/png"}, `\.png`},
		{models.Photo{Name: "", ContentType: "image/gif"}, ``},
		{models.Photo{Name: "a.p#g", ContentType: "image/png"}, `\.png`},
		{models.Photo{Name: "a.j%2Fg", ContentType: "image/jpeg"}, `\.jpg`},
		{models.Photo{Name: "a.jpeg?x", ContentType: "image/jpeg"}, `\.jpg`},
	}
	for _, c := range cases {
		got := ObjectName("photos/", c.photo)
		assert.Regexp(t, regexp.MustCompile(`^photos/`+uuidName+c.ext+`$`), got, c.photo.Name)
	}
	assert.NotEqual(t, ObjectName("p/", cases[0].photo), ObjectName("p/", cases[0].photo))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t,
		"https://storage.googleapis.com/report-photos/photos/a.jpg",
		PublicURL("https://storage.googleapis.com/", "report-photos", "photos/a.jpg"))
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	_, err := NewGCS(context.Background(), Options{})
	require.Error(t, err)
}

func TestUpload_Integration(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET not set")
	}
	ctx := context.Background()
	g, err := NewGCS(ctx, Options{Bucket: bucket, Prefix: "test/", PublicURL: "https://storage.googleapis.com"})
	require.NoError(t, err)
	defer g.Close()

	url, err := g.Upload(ctx, models.Photo{Name: "x.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	require.NoError(t, err)
	assert.Contains(t, url, "/"+bucket+"/test/")
}

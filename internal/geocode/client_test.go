package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/models"
)

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "-33.0472", r.URL.Query().Get("lat"))
		assert.Equal(t, "-71.6127", r.URL.Query().Get("lon"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"display_name":"Av. Pedro Montt 1234, Valparaíso"}`))
	}))
	defer srv.Close()

	addr, err := New(srv.URL).Reverse(context.Background(), -33.0472, -71.6127)
	require.NoError(t, err)
	assert.Equal(t, "Av. Pedro Montt 1234, Valparaíso", addr)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "plaza victoria", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[
			{"lat":"-33.0378","lon":"-71.6270","display_name":"Plaza Victoria"},
			{"lat":"bad","lon":"-71.6","display_name":"skipped"}
		]`))
	}))
	defer srv.Close()

	got, err := New(srv.URL).Search(context.Background(), "plaza victoria")
	require.NoError(t, err)
	assert.Equal(t, []models.Location{{Lat: -33.0378, Lng: -71.6270, Address: "Plaza Victoria"}}, got)
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Reverse(context.Background(), 0, 0)
	assert.ErrorContains(t, err, "429")
}

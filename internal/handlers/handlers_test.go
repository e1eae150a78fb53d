package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/middleware"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/repository/mock"
	"munidenuncia/internal/session"
	"munidenuncia/internal/validation"
)

func TestWriteErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", &validation.Error{Fields: map[string]string{"title": "Title too long"}}, http.StatusUnprocessableEntity},
		{"auth", fmt.Errorf("login: %w", repository.ErrAuth), http.StatusUnauthorized},
		{"not found", repository.NotFound("report", "9"), http.StatusNotFound},
		{"partial", &repository.PartialWriteError{Stage: "insert message", ReportID: "r1", Err: errors.New("boom")}, http.StatusBadGateway},
		{"partial wrapping not found", &repository.PartialWriteError{Stage: "insert report", PhotoURL: "https://x/p.jpg", Err: repository.NotFound("user", "u1")}, http.StatusBadGateway},
		{"partial wrapping transient", &repository.PartialWriteError{Stage: "insert message", ReportID: "r1", Err: repository.ErrTransient}, http.StatusBadGateway},
		{"transient", fmt.Errorf("get reports: %w", repository.ErrTransient), http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeErr(rec, zerolog.Nop(), tc.err)
			assert.Equal(t, tc.code, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	writeErr(rec, zerolog.Nop(), fmt.Errorf("send: %w", context.Canceled))
	assert.Empty(t, rec.Body.String())
}

func TestWriteErr_PartialWriteHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, zerolog.Nop(), &repository.PartialWriteError{
		Stage:    "insert report",
		PhotoURL: "https://x/p.jpg",
		Err:      repository.NotFound("user", "u1"),
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), "p.jpg")
	assert.NotContains(t, rec.Body.String(), "u1")
}

func TestWriteErr_ValidationBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, zerolog.Nop(), &validation.Error{Fields: map[string]string{"urgency": "Please select the urgency level"}})
	assert.JSONEq(t, `{"error":"validation failed","fields":{"urgency":"Please select the urgency level"}}`, rec.Body.String())
}

func TestContentType(t *testing.T) {
	hdr := &multipart.FileHeader{Header: textproto.MIMEHeader{}}
	hdr.Header.Set("Content-Type", "Image/JPEG; charset=binary")
	assert.Equal(t, "image/jpeg", contentType(hdr))

	assert.Equal(t, "", contentType(&multipart.FileHeader{Header: textproto.MIMEHeader{}}))
}

func TestParseCoord(t *testing.T) {
	v, ok := parseCoord(" -33.0472 ")
	assert.True(t, ok)
	assert.InDelta(t, -33.0472, v, 1e-9)

	_, ok = parseCoord("")
	assert.False(t, ok)
}

type stubGeo struct {
	addr string
	err  error
}

func (g stubGeo) Reverse(context.Context, float64, float64) (string, error) { return g.addr, g.err }
func (g stubGeo) Search(context.Context, string) ([]models.Location, error) {
	return []models.Location{{Lat: -33.04, Lng: -71.61, Address: g.addr}}, g.err
}

func TestLookupAddress(t *testing.T) {
	h := NewReportsHTTP(nil, stubGeo{addr: "Plaza Sotomayor, Valparaíso"}, zerolog.Nop())
	assert.Equal(t, "Plaza Sotomayor, Valparaíso", h.lookupAddress(context.Background(), models.Location{Lat: -33.03, Lng: -71.62}))

	h = NewReportsHTTP(nil, stubGeo{err: errors.New("upstream 500")}, zerolog.Nop())
	assert.Equal(t, "", h.lookupAddress(context.Background(), models.Location{}))
}

func TestGeocodeHTTP(t *testing.T) {
	r := chi.NewRouter()
	gh := NewGeocodeHTTP(stubGeo{addr: "Cerro Alegre"}, zerolog.Nop())
	r.Get("/reverse", gh.Reverse())
	r.Get("/search", gh.Search())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reverse?lat=-33.04&lng=-71.62", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cerro Alegre")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reverse?lat=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=cerro", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var locs []models.Location
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &locs))
	require.Len(t, locs, 1)

	bad := NewGeocodeHTTP(stubGeo{err: errors.New("nominatim down")}, zerolog.Nop())
	rec = httptest.NewRecorder()
	bad.Search().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/search?q=cerro", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func withUser(r *http.Request, uid, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.CtxUserID, uid)
	ctx = context.WithValue(ctx, middleware.CtxRole, role)
	return r.WithContext(ctx)
}

func TestSummaryCounts(t *testing.T) {
	store := mock.NewStore()
	now := time.Now()
	store.Seed("1", now)
	data := mock.New(store, session.NewMemoryStore(), zerolog.Nop(), mock.Options{})

	h := NewReportsHTTP(data, nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.Summary().ServeHTTP(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/reports/summary", nil), "1", models.RoleCitizen))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Total    int                   `json:"total"`
		Open     int                   `json:"open"`
		HighOpen int                   `json:"highOpen"`
		ByStatus map[models.Status]int `json:"byStatus"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	reports, err := data.GetReports(context.Background(), "1")
	require.NoError(t, err)
	open, highOpen := 0, 0
	for _, r := range reports {
		if !r.Status.Closed() {
			open++
			if r.Urgency == models.UrgencyHigh {
				highOpen++
			}
		}
	}
	assert.Equal(t, len(reports), got.Total)
	assert.Equal(t, open, got.Open)
	assert.Equal(t, highOpen, got.HighOpen)
	assert.Len(t, got.ByStatus, 5)
}

func TestWritePump_FailedWriteStopsClient(t *testing.T) {
	stopped := make(chan bool, 1)
	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			stopped <- false
			return
		}
		c := &wsClient{conn: conn, send: make(chan wsOut, sendBufferSize), done: make(chan struct{})}
		_ = conn.Close() // every write fails from here on
		c.push(wsOut{Type: "message"})
		c.writePump()

		// with nobody draining send, pushes past the buffer must still return
		for i := 0; i < sendBufferSize+2; i++ {
			c.push(wsOut{Type: "message"})
		}
		select {
		case <-c.done:
			stopped <- true
		default:
			stopped <- false
		}
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case ok := <-stopped:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("push blocked after the writer exited")
	}
}

func photoBody(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"title": "Bache gigante", "urgency": "high", "lat": "-33.04", "lng": "-71.62"} {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photoFile"; filename="bache.png"`)
	hdr.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x89}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestOversizedPhoto(t *testing.T) {
	data := mock.New(mock.NewStore(), session.NewMemoryStore(), zerolog.Nop(), mock.Options{})
	reports := NewReportsHTTP(data, nil, zerolog.Nop())
	photos := NewPhotosHTTP(data, nil, zerolog.Nop())

	cases := []struct {
		name string
		size int
		h    http.HandlerFunc
	}{
		{"report just over the photo limit", validation.MaxPhotoBytes + 1024, reports.Create()},
		{"report over the body cap", maxUploadBody + 1024, reports.Create()},
		{"upload over the body cap", maxUploadBody + 1024, photos.Upload()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := photoBody(t, tc.size)
			req := httptest.NewRequest(http.MethodPost, "/", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			tc.h.ServeHTTP(rec, withUser(req, "1", models.RoleCitizen))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var got struct {
				Fields map[string]string `json:"fields"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, "Photo must be less than 10MB", got.Fields["photoFile"])
		})
	}
}

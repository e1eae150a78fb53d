package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"munidenuncia/internal/metrics"
	"munidenuncia/internal/middleware"
	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/utils"
	"munidenuncia/internal/validation"
)

// Geocoder fills in addresses; optional.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (string, error)
	Search(ctx context.Context, q string) ([]models.Location, error)
}

// multipart bodies are capped a little above the photo limit; a body over
// the cap is answered like an oversized photo.
const maxUploadBody = validation.MaxPhotoBytes + 1<<20

// parseUpload parses a capped multipart body and writes the response when
// it cannot be read.
func parseUpload(w http.ResponseWriter, r *http.Request, log zerolog.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	err := r.ParseMultipartForm(1 << 20)
	if err == nil {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
		writeErr(w, log, validation.PhotoTooLarge())
		return false
	}
	utils.Error(w, http.StatusBadRequest, "invalid multipart form")
	return false
}

type ReportsHTTP struct {
	data repository.DataAdapter
	geo  Geocoder
	log  zerolog.Logger
}

func NewReportsHTTP(data repository.DataAdapter, geo Geocoder, log zerolog.Logger) *ReportsHTTP {
	return &ReportsHTTP{data: data, geo: geo, log: log}
}

func currentUser(r *http.Request) (uid, role string) {
	uid, _ = utils.GetString(r.Context(), middleware.CtxUserID)
	role, _ = utils.GetString(r.Context(), middleware.CtxRole)
	return uid, role
}

// visibleReport loads a report the caller may see. Reports of other users
// are reported as missing; agents see every report.
func visibleReport(r *http.Request, data repository.DataAdapter, id string) (*models.Report, error) {
	rep, err := data.GetReport(r.Context(), id)
	if err != nil {
		return nil, err
	}
	uid, role := currentUser(r)
	if rep.UserID != uid && role != models.RoleAgent {
		return nil, repository.NotFound("report", id)
	}
	return rep, nil
}

// GET /api/reports?status=&urgency=&q=&limit=
func (h *ReportsHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := currentUser(r)
		items, err := h.data.GetReports(r.Context(), uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		qv := r.URL.Query()
		f := repository.ReportFilter{Q: qv.Get("q"), Status: qv.Get("status"), Urgency: qv.Get("urgency")}
		out := f.Apply(items)
		if limit := utils.QueryInt(qv, "limit", 0); limit > 0 && limit < len(out) {
			out = out[:limit] // dashboard shows the latest few
		}
		utils.JSON(w, http.StatusOK, out)
	}
}

// GET /api/reports/summary
// Returns: { total, open, resolved7d, highOpen, byStatus }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, _ := currentUser(r)
		items, err := h.data.GetReports(r.Context(), uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}

		now := time.Now()
		open, resolved7d, highOpen := 0, 0, 0
		byStatus := map[models.Status]int{
			models.StatusSubmitted:  0,
			models.StatusInReview:   0,
			models.StatusInProgress: 0,
			models.StatusResolved:   0,
			models.StatusRejected:   0,
		}
		for _, rep := range items {
			byStatus[rep.Status]++
			closed := rep.Status.Closed()
			if !closed {
				open++
			}
			if rep.Status == models.StatusResolved && now.Sub(rep.UpdatedAt) <= 7*24*time.Hour {
				resolved7d++
			}
			if rep.Urgency == models.UrgencyHigh && !closed {
				highOpen++
			}
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"total":      len(items),
			"open":       open,
			"resolved7d": resolved7d,
			"highOpen":   highOpen,
			"byStatus":   byStatus,
		})
	}
}

// GET /api/reports/{id}
func (h *ReportsHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := visibleReport(r, h.data, chi.URLParam(r, "id"))
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, rep)
	}
}

// POST /api/reports (multipart/form-data)
// Fields: title, description, urgency, lat, lng, address, photoFile.
func (h *ReportsHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !parseUpload(w, r, h.log) {
			return
		}
		defer r.MultipartForm.RemoveAll()

		in := models.CreateReportInput{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Description: strings.TrimSpace(r.FormValue("description")),
			Urgency:     models.Urgency(r.FormValue("urgency")),
			Location:    models.Location{Address: strings.TrimSpace(r.FormValue("address"))},
		}
		fields := map[string]string{}
		var ok bool
		if in.Location.Lat, ok = parseCoord(r.FormValue("lat")); !ok {
			fields["location.lat"] = "Latitude must be between -90 and 90"
		}
		if in.Location.Lng, ok = parseCoord(r.FormValue("lng")); !ok {
			fields["location.lng"] = "Longitude must be between -180 and 180"
		}

		photo, err := readPhoto(r, "photoFile")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			utils.Error(w, http.StatusBadRequest, "unreadable photo")
			return
		}
		in.Photo = photo

		res := validation.Report(in)
		for k, v := range res.Errors {
			fields[k] = v
		}
		if len(fields) > 0 {
			writeErr(w, h.log, &validation.Error{Fields: fields})
			return
		}

		if in.Location.Address == "" && h.geo != nil {
			in.Location.Address = h.lookupAddress(r.Context(), in.Location)
		}

		uid, _ := currentUser(r)
		rep, err := h.data.CreateReport(r.Context(), in, uid)
		if err != nil {
			writeErr(w, h.log, err)
			return
		}
		metrics.ReportsCreatedTotal.Inc()
		h.log.Info().Str("report", rep.ID).Str("user", uid).Str("urgency", string(rep.Urgency)).Msg("report created")
		utils.JSON(w, http.StatusCreated, rep)
	}
}

// lookupAddress is best effort: a failed lookup leaves the address empty.
func (h *ReportsHTTP) lookupAddress(ctx context.Context, loc models.Location) string {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	addr, err := h.geo.Reverse(ctx, loc.Lat, loc.Lng)
	if err != nil {
		h.log.Warn().Err(err).Float64("lat", loc.Lat).Float64("lng", loc.Lng).Msg("reverse geocoding failed")
		return ""
	}
	return addr
}

func parseCoord(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

// readPhoto reads at most one byte past the photo limit, enough for
// validation to reject an oversized file.
func readPhoto(r *http.Request, field string) (*models.Photo, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, validation.MaxPhotoBytes+1))
	if err != nil {
		return nil, err
	}
	return &models.Photo{Name: hdr.Filename, ContentType: contentType(hdr), Data: data}, nil
}

func contentType(hdr *multipart.FileHeader) string {
	ct := hdr.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

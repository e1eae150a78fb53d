// Package mock is a network-independent DataAdapter backed by an in-memory
// Store, with simulated latency to surface loading states.
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/session"
)

const sessionKey = "mock_user"

var latency = map[string]time.Duration{
	"login":        500 * time.Millisecond,
	"logout":       200 * time.Millisecond,
	"getReports":   300 * time.Millisecond,
	"getReport":    200 * time.Millisecond,
	"createReport": 800 * time.Millisecond,
	"getMessages":  200 * time.Millisecond,
	"sendMessage":  300 * time.Millisecond,
	"operator":     300 * time.Millisecond,
}

type Options struct {
	Latency     bool             // sleep like a real network call
	BlobBaseURL string           // prefix of uploaded photo references, default "/blobs/"
	Now         func() time.Time // clock, default time.Now
}

type Adapter struct {
	store    *Store
	sessions session.Store
	log      zerolog.Logger
	opts     Options
}

var (
	_ repository.DataAdapter = (*Adapter)(nil)
	_ repository.Operator    = (*Adapter)(nil)
)

func New(store *Store, sessions session.Store, log zerolog.Logger, opts Options) *Adapter {
	if opts.BlobBaseURL == "" {
		opts.BlobBaseURL = "/blobs/"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Adapter{store: store, sessions: sessions, log: log, opts: opts}
}

func (a *Adapter) now() time.Time { return a.opts.Now().UTC() }

func (a *Adapter) wait(ctx context.Context, op string) error {
	if !a.opts.Latency {
		return ctx.Err()
	}
	t := time.NewTimer(latency[op])
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func (a *Adapter) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	if err := a.wait(ctx, "login"); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	acc, ok := a.store.accounts[creds.Email]
	a.store.mu.Unlock()
	if !ok || acc.password != creds.Password {
		return nil, repository.ErrAuth
	}
	if err := session.SetJSON(ctx, a.sessions, sessionKey, acc.user); err != nil {
		return nil, err
	}
	a.log.Debug().Str("user", acc.user.ID).Msg("mock login")
	return &models.AuthResult{User: acc.user}, nil
}

func (a *Adapter) Logout(ctx context.Context) error {
	if err := a.wait(ctx, "logout"); err != nil {
		return err
	}
	return a.sessions.Delete(ctx, sessionKey)
}

func (a *Adapter) GetCurrentUser(ctx context.Context) (*models.User, error) {
	b, ok, err := a.sessions.Get(ctx, sessionKey)
	if err != nil || !ok {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		a.log.Warn().Err(err).Msg("discarding unreadable mock session")
		return nil, a.sessions.Delete(ctx, sessionKey)
	}
	return &u, nil
}

// -----------------------------------------------------------------------------
// Reports
// -----------------------------------------------------------------------------

// GetReports returns the user's reports, newest first.
func (a *Adapter) GetReports(ctx context.Context, userID string) ([]models.Report, error) {
	if err := a.wait(ctx, "getReports"); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	out := make([]models.Report, 0)
	for i := len(a.store.reports) - 1; i >= 0; i-- {
		if r := a.store.reports[i]; r.UserID == userID {
			out = append(out, *cloneReport(r))
		}
	}
	a.store.mu.Unlock()

	// ties keep reverse insertion order
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (a *Adapter) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if err := a.wait(ctx, "getReport"); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	r := a.store.find(id)
	if r == nil {
		return nil, repository.NotFound("report", id)
	}
	return cloneReport(r), nil
}

// CreateReport stores the report together with its acknowledgment message.
func (a *Adapter) CreateReport(ctx context.Context, in models.CreateReportInput, userID string) (*models.Report, error) {
	if in.Photo == nil {
		return nil, errors.New("mock: create report without photo")
	}
	if err := a.wait(ctx, "createReport"); err != nil {
		return nil, err
	}
	photoURL, err := a.UploadPhoto(ctx, *in.Photo)
	if err != nil {
		return nil, err
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	now := a.now()
	reportID := a.store.nextReportID()
	ack := models.Message{
		ID:        a.store.nextMessageID(),
		ReportID:  reportID,
		Sender:    models.SenderCity,
		Text:      models.AcknowledgmentText,
		CreatedAt: now,
		System:    true,
	}
	r := &models.Report{
		ID:          reportID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		PhotoURL:    photoURL,
		Location:    in.Location,
		Status:      models.StatusSubmitted,
		Urgency:     in.Urgency,
		CreatedAt:   now,
		UpdatedAt:   now,
		Messages:    []models.Message{ack},
	}
	a.store.reports = append(a.store.reports, r)
	a.log.Debug().Str("report", reportID).Str("user", userID).Msg("mock report created")
	return cloneReport(r), nil
}

// UploadPhoto keeps the bytes in memory; the returned reference is valid
// for the lifetime of the process.
func (a *Adapter) UploadPhoto(_ context.Context, photo models.Photo) (string, error) {
	id := uuid.NewString()
	a.store.mu.Lock()
	a.store.blobs[id] = photo
	a.store.mu.Unlock()
	return a.opts.BlobBaseURL + id, nil
}

// Blob returns a photo previously stored by UploadPhoto.
func (a *Adapter) Blob(id string) (models.Photo, bool) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	p, ok := a.store.blobs[id]
	return p, ok
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func (a *Adapter) GetMessages(ctx context.Context, reportID string) ([]models.Message, error) {
	if err := a.wait(ctx, "getMessages"); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	r := a.store.find(reportID)
	if r == nil {
		return nil, repository.NotFound("report", reportID)
	}
	return append([]models.Message(nil), r.Messages...), nil
}

func (a *Adapter) SendMessage(ctx context.Context, in models.SendMessageInput, _ string) (*models.Message, error) {
	if err := a.wait(ctx, "sendMessage"); err != nil {
		return nil, err
	}
	return a.appendMessage(in.ReportID, models.SenderUser, in.Text)
}

func (a *Adapter) appendMessage(reportID string, sender models.Sender, text string) (*models.Message, error) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	r := a.store.find(reportID)
	if r == nil {
		return nil, repository.NotFound("report", reportID)
	}
	m := models.Message{
		ID:        a.store.nextMessageID(),
		ReportID:  reportID,
		Sender:    sender,
		Text:      text,
		CreatedAt: a.now(),
	}
	r.Messages = append(r.Messages, m)
	r.UpdatedAt = m.CreatedAt
	return &m, nil
}

// -----------------------------------------------------------------------------
// Operator
// -----------------------------------------------------------------------------

func (a *Adapter) UpdateStatus(ctx context.Context, reportID string, status models.Status) (*models.Report, error) {
	if !status.Valid() {
		return nil, errors.New("unknown status " + string(status))
	}
	if err := a.wait(ctx, "operator"); err != nil {
		return nil, err
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	r := a.store.find(reportID)
	if r == nil {
		return nil, repository.NotFound("report", reportID)
	}
	r.Status = status
	r.UpdatedAt = a.now()
	return cloneReport(r), nil
}

func (a *Adapter) Reply(ctx context.Context, reportID, text string) (*models.Message, error) {
	if err := a.wait(ctx, "operator"); err != nil {
		return nil, err
	}
	return a.appendMessage(reportID, models.SenderCity, text)
}

// Package remote is the DataAdapter for the hosted backend: password auth,
// row storage, photo object storage and a realtime message feed, each
// behind its own port.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
	"munidenuncia/internal/repository/postgres"
	"munidenuncia/internal/service"
	"munidenuncia/internal/session"
)

const sessionKey = "remote_session"

type Authenticator interface {
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	Verify(ctx context.Context, token string) (*models.User, error)
}

type ObjectStore interface {
	Upload(ctx context.Context, photo models.Photo) (string, error)
}

// Deps are the hosted backend services. Feed may be nil when the realtime
// capability is not wanted.
type Deps struct {
	Auth     Authenticator
	Reports  repository.ReportRepository
	Messages repository.MessageRepository
	Objects  ObjectStore
	Feed     notificationSource
	Sessions session.Store
}

type storedSession struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

type Adapter struct {
	Deps
	log zerolog.Logger
	now func() time.Time
}

var (
	_ repository.DataAdapter       = (*Adapter)(nil)
	_ repository.MessageSubscriber = (*Adapter)(nil)
	_ repository.Operator          = (*Adapter)(nil)
)

func New(d Deps, log zerolog.Logger) *Adapter {
	return &Adapter{Deps: d, log: log, now: time.Now}
}

// Postgres keeps microseconds.
func (a *Adapter) timestamp() time.Time { return a.now().UTC().Truncate(time.Microsecond) }

// -----------------------------------------------------------------------------
// Auth
// -----------------------------------------------------------------------------

func (a *Adapter) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	token, u, err := a.Auth.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, mapErr("login", err)
	}
	if err := session.SetJSON(ctx, a.Sessions, sessionKey, storedSession{AccessToken: token, User: *u}); err != nil {
		return nil, err
	}
	return &models.AuthResult{User: *u, Token: token}, nil
}

func (a *Adapter) Logout(ctx context.Context) error {
	return a.Sessions.Delete(ctx, sessionKey)
}

// GetCurrentUser returns the persisted session's user while its token is
// valid. An expired or unreadable session is cleared.
func (a *Adapter) GetCurrentUser(ctx context.Context) (*models.User, error) {
	b, ok, err := a.Sessions.Get(ctx, sessionKey)
	if err != nil || !ok {
		return nil, err
	}
	var s storedSession
	if err := json.Unmarshal(b, &s); err != nil {
		a.log.Warn().Err(err).Msg("discarding unreadable remote session")
		return nil, a.Sessions.Delete(ctx, sessionKey)
	}
	if _, err := a.Auth.Verify(ctx, s.AccessToken); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.log.Info().Str("user", s.User.ID).Msg("remote session expired")
			return nil, a.Sessions.Delete(ctx, sessionKey)
		}
		return nil, mapErr("verify session", err)
	}
	u := s.User
	return &u, nil
}

// -----------------------------------------------------------------------------
// Reports
// -----------------------------------------------------------------------------

// GetReports loads each report's thread with its own query.
// TODO: batch the message load with report_id = ANY($1) once lists grow past a page.
func (a *Adapter) GetReports(ctx context.Context, userID string) ([]models.Report, error) {
	reports, err := a.Reports.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapErr("list reports", err)
	}
	for i := range reports {
		msgs, err := a.Messages.ListByReport(ctx, reports[i].ID)
		if err != nil {
			return nil, mapErr("list messages", err)
		}
		reports[i].Messages = msgs
	}
	return reports, nil
}

func (a *Adapter) GetReport(ctx context.Context, id string) (*models.Report, error) {
	r, err := a.Reports.Get(ctx, id)
	if err != nil {
		return nil, mapErr("get report", err)
	}
	if r == nil {
		return nil, repository.NotFound("report", id)
	}
	msgs, err := a.Messages.ListByReport(ctx, id)
	if err != nil {
		return nil, mapErr("list messages", err)
	}
	r.Messages = msgs
	return r, nil
}

// CreateReport uploads the photo, then inserts the report and its
// acknowledgment. Steps that already succeeded are not undone; a later
// failure is reported as a *repository.PartialWriteError.
func (a *Adapter) CreateReport(ctx context.Context, in models.CreateReportInput, userID string) (*models.Report, error) {
	if in.Photo == nil {
		return nil, errors.New("remote: create report without photo")
	}
	photoURL, err := a.UploadPhoto(ctx, *in.Photo)
	if err != nil {
		return nil, err
	}

	now := a.timestamp()
	r := &models.Report{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		PhotoURL:    photoURL,
		Location:    in.Location,
		Status:      models.StatusSubmitted,
		Urgency:     in.Urgency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.Reports.Insert(ctx, r); err != nil {
		a.log.Error().Err(err).Str("photo", photoURL).Msg("report insert failed after upload")
		return nil, &repository.PartialWriteError{Stage: "insert report", PhotoURL: photoURL, Err: mapErr("insert report", err)}
	}

	ack := models.Message{
		ReportID:  r.ID,
		Sender:    models.SenderCity,
		Text:      models.AcknowledgmentText,
		CreatedAt: now,
		System:    true,
	}
	if err := a.Messages.Insert(ctx, &ack); err != nil {
		a.log.Error().Err(err).Str("report", r.ID).Msg("acknowledgment insert failed")
		return nil, &repository.PartialWriteError{Stage: "insert message", PhotoURL: photoURL, ReportID: r.ID, Err: mapErr("insert message", err)}
	}
	r.Messages = []models.Message{ack}
	return r, nil
}

func (a *Adapter) UploadPhoto(ctx context.Context, photo models.Photo) (string, error) {
	url, err := a.Objects.Upload(ctx, photo)
	if err != nil {
		return "", mapErr("upload photo", err)
	}
	return url, nil
}

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

func (a *Adapter) GetMessages(ctx context.Context, reportID string) ([]models.Message, error) {
	r, err := a.Reports.Get(ctx, reportID)
	if err != nil {
		return nil, mapErr("get report", err)
	}
	if r == nil {
		return nil, repository.NotFound("report", reportID)
	}
	msgs, err := a.Messages.ListByReport(ctx, reportID)
	if err != nil {
		return nil, mapErr("list messages", err)
	}
	return msgs, nil
}

func (a *Adapter) SendMessage(ctx context.Context, in models.SendMessageInput, _ string) (*models.Message, error) {
	return a.post(ctx, in.ReportID, models.SenderUser, in.Text)
}

func (a *Adapter) post(ctx context.Context, reportID string, sender models.Sender, text string) (*models.Message, error) {
	m := models.Message{ReportID: reportID, Sender: sender, Text: text, CreatedAt: a.timestamp()}
	if err := a.Messages.Insert(ctx, &m); err != nil {
		err = mapErr("insert message", err)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.NotFound("report", reportID)
		}
		return nil, err
	}
	if err := a.Reports.Touch(ctx, reportID, m.CreatedAt); err != nil {
		a.log.Warn().Err(err).Str("report", reportID).Msg("updated_at not refreshed")
	}
	return &m, nil
}

// SubscribeToMessages pushes messages inserted into the report's thread
// after the call. The feed filters by report server-side.
func (a *Adapter) SubscribeToMessages(ctx context.Context, reportID string, fn func(models.Message)) (repository.Unsubscribe, error) {
	if a.Feed == nil {
		return nil, errors.New("remote: realtime feed not configured")
	}
	l, err := a.Feed.Listen(ctx, channel(reportID))
	if err != nil {
		return nil, mapErr("subscribe", err)
	}

	lctx, cancel := context.WithCancel(context.Background())
	sub := repository.NewSubscription(fn, cancel)
	go a.pump(lctx, l, sub, reportID)
	return sub.Unsubscribe, nil
}

func (a *Adapter) pump(ctx context.Context, l Listener, sub *repository.Subscription, reportID string) {
	defer l.Close()
	for {
		payload, err := l.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				a.log.Warn().Err(err).Str("report", reportID).Msg("message feed stopped")
			}
			return
		}
		var row postgres.MessageRow
		if err := json.Unmarshal([]byte(payload), &row); err != nil {
			a.log.Warn().Err(err).Str("report", reportID).Msg("bad feed payload")
			continue
		}
		if row.ReportID != reportID {
			continue
		}
		if !sub.Deliver(row.ToModel()) {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Operator
// -----------------------------------------------------------------------------

func (a *Adapter) UpdateStatus(ctx context.Context, reportID string, status models.Status) (*models.Report, error) {
	if !status.Valid() {
		return nil, errors.New("unknown status " + string(status))
	}
	r, err := a.Reports.UpdateStatus(ctx, reportID, status, a.timestamp())
	if err != nil {
		return nil, mapErr("update status", err)
	}
	if r == nil {
		return nil, repository.NotFound("report", reportID)
	}
	msgs, err := a.Messages.ListByReport(ctx, reportID)
	if err != nil {
		return nil, mapErr("list messages", err)
	}
	r.Messages = msgs
	return r, nil
}

func (a *Adapter) Reply(ctx context.Context, reportID, text string) (*models.Message, error) {
	return a.post(ctx, reportID, models.SenderCity, text)
}

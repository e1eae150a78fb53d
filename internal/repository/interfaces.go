package repository

import (
	"context"
	"time"

	"munidenuncia/internal/models"
)

// DataAdapter is everything the HTTP layer may ask of "the backend",
// independent of which backend is active.
type DataAdapter interface {
	// Auth
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	GetCurrentUser(ctx context.Context) (*models.User, error)

	// Reports
	GetReports(ctx context.Context, userID string) ([]models.Report, error)
	GetReport(ctx context.Context, id string) (*models.Report, error)
	CreateReport(ctx context.Context, in models.CreateReportInput, userID string) (*models.Report, error)
	UploadPhoto(ctx context.Context, photo models.Photo) (string, error)

	// Messages
	GetMessages(ctx context.Context, reportID string) ([]models.Message, error)
	SendMessage(ctx context.Context, in models.SendMessageInput, userID string) (*models.Message, error)
}

// Unsubscribe stops a message subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// MessageSubscriber is implemented by adapters that can push new messages.
type MessageSubscriber interface {
	SubscribeToMessages(ctx context.Context, reportID string, fn func(models.Message)) (Unsubscribe, error)
}

// Operator is implemented by adapters that let municipal agents move a
// report through the workflow and reply to the citizen.
type Operator interface {
	UpdateStatus(ctx context.Context, reportID string, status models.Status) (*models.Report, error)
	Reply(ctx context.Context, reportID, text string) (*models.Message, error)
}

// Subscriber returns the push capability of a, if it has one.
func Subscriber(a DataAdapter) (MessageSubscriber, bool) {
	s, ok := a.(MessageSubscriber)
	return s, ok
}

// WithoutRealtime hides the MessageSubscriber capability of a, keeping Operator.
func WithoutRealtime(a DataAdapter) DataAdapter {
	if op, ok := a.(Operator); ok {
		return struct {
			DataAdapter
			Operator
		}{a, op}
	}
	return struct{ DataAdapter }{a}
}

// -----------------------------------------------------------------------------
// Hosted backend tables (implemented in postgres)
// -----------------------------------------------------------------------------

// UserRepository returns (nil, nil) when the user does not exist.
type UserRepository interface {
	Create(ctx context.Context, email, name, role, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, string, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// ReportRepository returns reports without their messages. Get returns
// (nil, nil) when the report does not exist.
type ReportRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Report, error)
	Get(ctx context.Context, id string) (*models.Report, error)
	Insert(ctx context.Context, r *models.Report) error
	UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) (*models.Report, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

type MessageRepository interface {
	ListByReport(ctx context.Context, reportID string) ([]models.Message, error)
	Insert(ctx context.Context, m *models.Message) error
}

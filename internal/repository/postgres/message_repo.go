package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
)

// MessageRow is the messages table as stored and as published on the
// realtime channel by the insert trigger (row_to_json).
type MessageRow struct {
	ID        string    `db:"id" json:"id"`
	ReportID  string    `db:"report_id" json:"report_id"`
	Sender    string    `db:"sender" json:"sender"`
	Text      string    `db:"text" json:"text"`
	System    bool      `db:"system" json:"system"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const messageColumns = `id::text AS id, report_id::text AS report_id, sender, text, system, created_at`

func (row MessageRow) ToModel() models.Message {
	return models.Message{
		ID:        row.ID,
		ReportID:  row.ReportID,
		Sender:    models.Sender(row.Sender),
		Text:      row.Text,
		System:    row.System,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func newMessageRow(m *models.Message) MessageRow {
	return MessageRow{
		ID:        m.ID,
		ReportID:  m.ReportID,
		Sender:    string(m.Sender),
		Text:      m.Text,
		System:    m.System,
		CreatedAt: m.CreatedAt,
	}
}

type MessageRepo struct{ db *pgxpool.Pool }

func NewMessageRepo(db *pgxpool.Pool) *MessageRepo { return &MessageRepo{db: db} }

var _ repository.MessageRepository = (*MessageRepo)(nil)

// ListByReport returns the thread oldest first.
func (r *MessageRepo) ListByReport(ctx context.Context, reportID string) ([]models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE report_id = $1
		ORDER BY created_at ASC, id ASC
	`, reportID)
	if err != nil {
		return nil, err
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[MessageRow])
	if err != nil {
		return nil, err
	}
	out := make([]models.Message, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ToModel())
	}
	return out, nil
}

// Insert stores m and fills in the generated id. A zero CreatedAt lets the
// database pick the timestamp.
func (r *MessageRepo) Insert(ctx context.Context, m *models.Message) error {
	row := newMessageRow(m)
	var at any
	if !row.CreatedAt.IsZero() {
		at = row.CreatedAt
	}
	if err := r.db.QueryRow(ctx, `
		INSERT INTO messages (report_id, sender, text, system, created_at)
		VALUES ($1,$2,$3,$4,COALESCE($5, now()))
		RETURNING id::text, created_at
	`, row.ReportID, row.Sender, row.Text, row.System, at).Scan(&m.ID, &m.CreatedAt); err != nil {
		return err
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return nil
}

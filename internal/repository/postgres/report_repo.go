package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"munidenuncia/internal/models"
	"munidenuncia/internal/repository"
)

// reportRow is the reports table as stored. Location lives in a jsonb column.
type reportRow struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	PhotoURL    string          `db:"photo_url"`
	Location    models.Location `db:"location"`
	Status      string          `db:"status"`
	Urgency     *string         `db:"urgency"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

const reportColumns = `id::text AS id, user_id::text AS user_id, title, description, photo_url,
	location, status, urgency, created_at, updated_at`

func newReportRow(r *models.Report) reportRow {
	row := reportRow{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		PhotoURL:    r.PhotoURL,
		Location:    r.Location,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Urgency != "" {
		u := string(r.Urgency)
		row.Urgency = &u
	}
	return row
}

func (row reportRow) toModel() models.Report {
	r := models.Report{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		PhotoURL:    row.PhotoURL,
		Location:    row.Location,
		Status:      models.Status(row.Status),
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
		Messages:    []models.Message{},
	}
	if row.Urgency != nil {
		r.Urgency = models.Urgency(*row.Urgency)
	}
	return r
}

type ReportRepo struct{ db *pgxpool.Pool }

func NewReportRepo(db *pgxpool.Pool) *ReportRepo { return &ReportRepo{db: db} }

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ListByUser returns the user's reports, newest first.
func (r *ReportRepo) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[reportRow])
	if err != nil {
		return nil, err
	}
	out := make([]models.Report, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func (r *ReportRepo) Get(ctx context.Context, id string) (*models.Report, error) {
	rows, err := r.db.Query(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[reportRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m := rec.toModel()
	return &m, nil
}

// Insert stores rep and fills in the generated id. CreatedAt and UpdatedAt
// are taken from rep.
func (r *ReportRepo) Insert(ctx context.Context, rep *models.Report) error {
	row := newReportRow(rep)
	return r.db.QueryRow(ctx, `
		INSERT INTO reports (user_id, title, description, photo_url, location, status, urgency, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id::text
	`,
		row.UserID, row.Title, row.Description, row.PhotoURL, row.Location, row.Status, row.Urgency, row.CreatedAt, row.UpdatedAt,
	).Scan(&rep.ID)
}

func (r *ReportRepo) UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) (*models.Report, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE reports SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING `+reportColumns,
		string(status), at, id)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[reportRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	m := rec.toModel()
	return &m, nil
}

// Touch refreshes updated_at after a new message.
func (r *ReportRepo) Touch(ctx context.Context, id string, at time.Time) error {
	ct, err := r.db.Exec(ctx, `UPDATE reports SET updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package models

import "time"

type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusInReview   Status = "in_review"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusRejected   Status = "rejected"
)

// Valid reports whether s is one of the workflow stages.
func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Closed is true for terminal stages.
func (s Status) Closed() bool { return s == StatusResolved || s == StatusRejected }

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

type Location struct {
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lng     float64 `json:"lng" validate:"min=-180,max=180"`
	Address string  `json:"address,omitempty"`
}

type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PhotoURL    string    `json:"photoUrl"`
	Location    Location  `json:"location"`
	Status      Status    `json:"status"`
	Urgency     Urgency   `json:"urgency,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Messages    []Message `json:"messages"`
}

// Photo is an uploaded image payload as received from the client.
type Photo struct {
	Name        string `json:"name"`
	ContentType string `json:"type" validate:"oneof=image/jpeg image/jpg image/png image/webp"`
	Data        []byte `json:"-" validate:"max=10485760"`
}

func (p Photo) Size() int64 { return int64(len(p.Data)) }

type CreateReportInput struct {
	Title       string   `json:"title" validate:"min=3,max=100"`
	Description string   `json:"description,omitempty" validate:"max=500"`
	Photo       *Photo   `json:"photoFile" validate:"required"`
	Location    Location `json:"location"`
	Urgency     Urgency  `json:"urgency" validate:"required,oneof=low medium high"`
}

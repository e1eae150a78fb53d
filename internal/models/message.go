package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderCity Sender = "city"
)

type Message struct {
	ID        string    `json:"id"`
	ReportID  string    `json:"reportId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	System    bool      `json:"system,omitempty"`
}

type SendMessageInput struct {
	ReportID string `json:"reportId"`
	Text     string `json:"text" validate:"min=1,max=1000"`
}

// AcknowledgmentText is the body of the system message created with every report.
const AcknowledgmentText = "We have received your request. Our team will review it shortly."

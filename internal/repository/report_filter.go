package repository

import (
	"strings"

	"munidenuncia/internal/models"
)

// ReportFilter narrows a user's report list the way the requests page does.
type ReportFilter struct {
	Q       string // case-insensitive match on title
	Status  string // exact; "" or "all" keeps every status
	Urgency string // exact
}

func (f ReportFilter) Apply(in []models.Report) []models.Report {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	status := strings.TrimSpace(f.Status)
	urgency := strings.TrimSpace(f.Urgency)

	out := make([]models.Report, 0, len(in))
	for _, r := range in {
		if status != "" && status != "all" && string(r.Status) != status {
			continue
		}
		if urgency != "" && string(r.Urgency) != urgency {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

package mock

import (
	"time"

	"munidenuncia/internal/models"
)

type seedReport struct {
	title, description, photo string
	loc                       models.Location
	status                    models.Status
	urgency                   models.Urgency
	age, touched              time.Duration
	replies                   []string
}

var examples = []seedReport{
	{
		title:       "Luminaria rota en Av. Pedro Montt",
		description: "La luminaria ubicada frente al número 1234 no funciona desde hace una semana, causando peligro para los peatones por las noches.",
		photo:       "https://images.unsplash.com/photo-1581578731548-c64695cc6952?w=800&auto=format&fit=crop",
		loc:         models.Location{Lat: -33.0472, Lng: -71.6127, Address: "Av. Pedro Montt 1234, Valparaíso, Región de Valparaíso, Chile"},
		status:      models.StatusInProgress,
		urgency:     models.UrgencyHigh,
		age:         5 * 24 * time.Hour,
		touched:     2 * 24 * time.Hour,
		replies:     []string{"Una cuadrilla fue asignada para reemplazar la luminaria."},
	},
	{
		title:       "Bache profundo en Calle Cumming",
		description: "Hay un bache de aproximadamente 50cm de diámetro que puede dañar los vehículos. Se encuentra a la altura del supermercado.",
		photo:       "https://images.unsplash.com/photo-1625047509168-a7026f36de04?w=800&auto=format&fit=crop",
		loc:         models.Location{Lat: -33.0450, Lng: -71.6200, Address: "Calle Cumming 567, Valparaíso, Región de Valparaíso, Chile"},
		status:      models.StatusInReview,
		urgency:     models.UrgencyMedium,
		age:         3 * 24 * time.Hour,
		touched:     3 * 24 * time.Hour,
	},
	{
		title:       "Acumulación de basura en Plaza Victoria",
		description: "Los contenedores están desbordados y hay basura acumulada alrededor desde el fin de semana.",
		photo:       "https://images.unsplash.com/photo-1621451537084-482c73073a0f?w=800&auto=format&fit=crop",
		loc:         models.Location{Lat: -33.0378, Lng: -71.6270, Address: "Plaza Victoria, Valparaíso, Región de Valparaíso, Chile"},
		status:      models.StatusResolved,
		urgency:     models.UrgencyMedium,
		age:         10 * 24 * time.Hour,
		touched:     24 * time.Hour,
		replies: []string{
			"Se programó un retiro extraordinario para mañana.",
			"El retiro fue realizado. Gracias por su aviso.",
		},
	},
	{
		title:       "Semáforo intermitente en Av. Argentina",
		description: "El semáforo del cruce con Calle Chacabuco está intermitente desde esta mañana, generando confusión en los conductores.",
		photo:       "https://images.unsplash.com/photo-1559827260-dc66d52bef19?w=800&auto=format&fit=crop",
		loc:         models.Location{Lat: -33.0420, Lng: -71.6180, Address: "Av. Argentina con Calle Chacabuco, Valparaíso, Región de Valparaíso, Chile"},
		status:      models.StatusInProgress,
		urgency:     models.UrgencyHigh,
		age:         24 * time.Hour,
		touched:     12 * time.Hour,
		replies:     []string{"Personal de tránsito se encuentra revisando el controlador."},
	},
}

// Seed adds the demo reports for userID, backdated relative to now. City
// replies are spread evenly between creation and the last update.
func (s *Store) Seed(userID string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ex := range examples {
		created := now.Add(-ex.age).UTC()
		updated := now.Add(-ex.touched).UTC()
		id := s.nextReportID()
		r := &models.Report{
			ID:          id,
			UserID:      userID,
			Title:       ex.title,
			Description: ex.description,
			PhotoURL:    ex.photo,
			Location:    ex.loc,
			Status:      ex.status,
			Urgency:     ex.urgency,
			CreatedAt:   created,
			UpdatedAt:   updated,
		}
		r.Messages = append(r.Messages, models.Message{
			ID:        s.nextMessageID(),
			ReportID:  id,
			Sender:    models.SenderCity,
			Text:      models.AcknowledgmentText,
			CreatedAt: created,
			System:    true,
		})
		step := updated.Sub(created) / time.Duration(len(ex.replies)+1)
		for i, text := range ex.replies {
			at := created.Add(step * time.Duration(i+1))
			if i == len(ex.replies)-1 {
				at = updated
			}
			r.Messages = append(r.Messages, models.Message{
				ID:        s.nextMessageID(),
				ReportID:  id,
				Sender:    models.SenderCity,
				Text:      text,
				CreatedAt: at,
			})
		}
		s.reports = append(s.reports, r)
	}
}

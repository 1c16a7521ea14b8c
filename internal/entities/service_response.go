package entities

import (
	"nailsalon/internal/db"
	"nailsalon/internal/scheduling"
)

type ServiceResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Duration        string  `json:"duration"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

func NewServiceResponses(services []db.Service) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, ServiceResponse{
			ID:              s.ID,
			Name:            s.Name,
			Duration:        scheduling.FormatDuration(s.Duration),
			DurationMinutes: s.Duration,
			Price:           s.Price,
		})
	}
	return out
}

package list_resources

import (
	"time"

	"github.com/m04kA/SMC-BayLedger/internal/domain"
)

// ResourceResponse HTTP response model
type ResourceResponse struct {
	ID                 int64  `json:"id"`
	Label              string `json:"label"`
	Category           string `json:"category"`
	Capacity           int    `json:"capacity"`
	RequiresMembership bool   `json:"requiresMembership"`
}

// HoursResponse часы работы на дату
type HoursResponse struct {
	Date   string  `json:"date"`
	Open   *string `json:"open,omitempty"`
	Close  *string `json:"close,omitempty"`
	Closed bool    `json:"closed"`
}

// ResourceListResponse список ресурсов и, если указана дата, часы работы
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
	Hours     *HoursResponse     `json:"hours,omitempty"`
}

// FromDomainResources конвертирует каталог в HTTP response
func FromDomainResources(resources []domain.Resource) *ResourceListResponse {
	resp := &ResourceListResponse{
		Resources: make([]ResourceResponse, 0, len(resources)),
	}
	for _, r := range resources {
		resp.Resources = append(resp.Resources, ResourceResponse{
			ID:                 r.ID,
			Label:              r.Label,
			Category:           string(r.Category),
			Capacity:           r.Capacity,
			RequiresMembership: r.RequiresMembership(),
		})
	}
	return resp
}

// FromDomainHours конвертирует часы работы дня
func FromDomainHours(date time.Time, hours domain.DayHours) *HoursResponse {
	resp := &HoursResponse{
		Date:   date.Format(domain.DateFormat),
		Closed: hours.Closed,
	}
	if !hours.Closed {
		open, closeAt := hours.Open.String(), hours.Close.String()
		resp.Open, resp.Close = &open, &closeAt
	}
	return resp
}

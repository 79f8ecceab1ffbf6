package services

import (
	"price-scout/metrics"
	"price-scout/models"
	"price-scout/utils"
)

// Qualifier filters parsed candidates down to the qualifying set.
type Qualifier struct {
	logger *utils.Logger
}

// NewQualifier creates a Qualifier with the given logger.
func NewQualifier(logger *utils.Logger) *Qualifier {
	return &Qualifier{logger: logger}
}

// Qualify drops candidates missing a required field and removes later
// duplicates of a URL. Discovery order is preserved.
func (q *Qualifier) Qualify(candidates []*models.Listing) []*models.Listing {
	seen := utils.NewURLSet()
	result := make([]*models.Listing, 0, len(candidates))

	for _, l := range candidates {
		if !l.Qualifies() {
			metrics.ListingsDropped.WithLabelValues("invalid").Inc()
			if l != nil {
				q.logger.Warn("[qualifier] Dropping listing without name, url or price: %q", l.Name)
			}
			continue
		}

		if !seen.Add(l.URL) {
			metrics.ListingsDropped.WithLabelValues("duplicate").Inc()
			q.logger.Debug("[qualifier] Duplicate URL skipped: %s", l.URL)
			continue
		}

		result = append(result, l)
	}

	q.logger.Info("[qualifier] Qualified %d → %d listings (%d unique URLs, dropped %d)",
		len(candidates), len(result), seen.Size(), len(candidates)-len(result))
	return result
}

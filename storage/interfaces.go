package storage

import "price-scout/models"

// RawCardWriter persists the uninterpreted cards of the latest run.
type RawCardWriter interface {
	WriteRaw(cards []models.RawCard) error
}

package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"code":              true,
	"name":              true,
	"category":          true,
	"stock":             true,
	"reorder_threshold": true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"sku":               true,
	"name":              true,
	"stock":             true,
	"reorder_threshold": true,
}

// ProductionRequestSortFields contains allowed sort fields for production requests
var ProductionRequestSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"requested_at":       true,
	"completed_at":       true,
	"status":             true,
	"quantity_requested": true,
}

// AdjustmentSortFields contains allowed sort fields for the adjustment ledger
var AdjustmentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"entity_id":       true,
	"entity_type":     true,
	"adjustment_type": true,
}

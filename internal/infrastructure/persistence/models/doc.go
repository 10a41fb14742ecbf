// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel and AggregateModel (optimistic-lock version)
//   - catalog.go: materials, products and bill-of-materials lines
//   - production.go: production requests and their material consumption snapshot
//   - inventory.go: the append-only adjustment ledger and stock reservations
package models

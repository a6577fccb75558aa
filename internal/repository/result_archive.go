package repository

import (
	"context"

	"github.com/user/contact-finder/internal/entity"
)

// ResultArchive defines the interface for storing terminal per-domain
// results. One row per (session, domain); re-processing a domain replaces the
// previous row.
type ResultArchive interface {
	// Save stores or updates the result for a domain within a session.
	Save(ctx context.Context, sessionID string, result *entity.DomainResult) error
	// FindBySession retrieves all archived results for a session in
	// completion order.
	FindBySession(ctx context.Context, sessionID string) ([]*entity.DomainResult, error)
}

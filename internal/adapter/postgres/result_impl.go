package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/contact-finder/internal/entity"
)

// ResultArchiveImpl provides a concrete implementation for the ResultArchive
// interface using PostgreSQL. Contact records and profiles are stored as
// JSONB documents keyed by (session_id, domain).
type ResultArchiveImpl struct {
	db *pgxpool.Pool
}

// NewResultArchive creates a new instance of ResultArchiveImpl.
func NewResultArchive(db *pgxpool.Pool) *ResultArchiveImpl {
	return &ResultArchiveImpl{db: db}
}

// Save stores or updates the result for a domain within a session.
func (r *ResultArchiveImpl) Save(ctx context.Context, sessionID string, result *entity.DomainResult) error {
	contactJSON, err := json.Marshal(result.Contact)
	if err != nil {
		return err
	}
	profilesJSON, err := json.Marshal(result.Profiles)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO domain_results (session_id, domain, status, contact, profiles, error, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, domain) DO UPDATE SET
			status = EXCLUDED.status,
			contact = EXCLUDED.contact,
			profiles = EXCLUDED.profiles,
			error = EXCLUDED.error,
			completed_at = EXCLUDED.completed_at;
	`

	_, err = r.db.Exec(ctx, query,
		sessionID,
		result.Domain,
		string(result.Status),
		contactJSON,
		profilesJSON,
		result.Error,
		result.CompletedAt,
	)
	return err
}

// FindBySession retrieves all archived results for a session in completion
// order.
func (r *ResultArchiveImpl) FindBySession(ctx context.Context, sessionID string) ([]*entity.DomainResult, error) {
	query := `
		SELECT domain, status, contact, profiles, error, completed_at
		FROM domain_results
		WHERE session_id = $1
		ORDER BY completed_at;
	`
	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*entity.DomainResult
	for rows.Next() {
		var res entity.DomainResult
		var status string
		var contactJSON, profilesJSON []byte

		if err := rows.Scan(&res.Domain, &status, &contactJSON, &profilesJSON, &res.Error, &res.CompletedAt); err != nil {
			return nil, err
		}
		res.Status = entity.TaskStatus(status)
		if len(contactJSON) > 0 {
			if err := json.Unmarshal(contactJSON, &res.Contact); err != nil {
				return nil, err
			}
		}
		if len(profilesJSON) > 0 {
			if err := json.Unmarshal(profilesJSON, &res.Profiles); err != nil {
				return nil, err
			}
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/LeaseForge/internal/domain/audit"
)

func (s *Store) AppendAudit(ctx context.Context, e *audit.Entry) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO audit_log (actor_id, action, entity_kind, entity_id, detail)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		e.ActorID, e.Action, e.EntityKind, e.EntityID, e.Detail,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit entry %s: %w", e.Action, err)
	}
	return nil
}

func (s *Store) ListAuditByEntity(ctx context.Context, entityKind, entityID string) ([]audit.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_id, action, entity_kind, entity_id, detail, created_at
		 FROM audit_log WHERE entity_kind = $1 AND entity_id = $2
		 ORDER BY created_at DESC`, entityKind, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries for %s %s: %w", entityKind, entityID, err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityKind, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

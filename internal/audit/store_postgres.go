package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kafkaportal/pkg/domain"
	txcontext "kafkaportal/pkg/platform/tx"
)

// PostgresStore persists entries in audit_logs.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry domain.AuditEntry) error {
	var changes []byte
	if entry.Changes != nil {
		var err error
		changes, err = json.Marshal(entry.Changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
	}
	_, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO audit_logs (id, user_id, username, action, entity_type, entity_id, changes, timestamp, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(entry.ID),
		uuid.UUID(entry.ActorID),
		entry.Actor,
		string(entry.Action),
		string(entry.EntityType),
		nullString(entry.EntityID),
		changes,
		entry.Timestamp,
		nullString(entry.IPAddress),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.Action != "" {
		add("action = $%d", string(filter.Action))
	}
	if filter.EntityType != "" {
		add("entity_type = $%d", string(filter.EntityType))
	}
	if filter.ActorID != nil {
		add("user_id = $%d", uuid.UUID(*filter.ActorID))
	}
	if filter.StartDate != nil {
		add("timestamp >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("timestamp <= $%d", *filter.EndDate)
	}

	query := `SELECT id, user_id, username, action, entity_type, entity_id, changes, timestamp, ip_address FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			id, actor       uuid.UUID
			entityID, ip    sql.NullString
			changes         []byte
			entry           domain.AuditEntry
			action, entType string
		)
		if err := rows.Scan(&id, &actor, &entry.Actor, &action, &entType, &entityID, &changes, &entry.Timestamp, &ip); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = domain.AuditEntryID(id)
		entry.ActorID = domain.UserID(actor)
		entry.Action = domain.AuditAction(action)
		entry.EntityType = domain.EntityType(entType)
		entry.EntityID = entityID.String
		entry.IPAddress = ip.String
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &entry.Changes); err != nil {
				return nil, fmt.Errorf("unmarshal audit changes: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

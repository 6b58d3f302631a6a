package requests

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kafkaportal/internal/platform/postgres"
	"kafkaportal/pkg/domain"
	"kafkaportal/pkg/platform/sentinel"
	txcontext "kafkaportal/pkg/platform/tx"
)

// PostgresStore persists requests in the requests table. The requester name
// is read from users so renames in the directory show up on old requests.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const selectRequest = `
	SELECT r.id, r.user_id, u.username, r.request_type, r.details, r.rationale, r.status,
	       r.created_at, r.decided_at, r.admin_user_id, r.rejection_reason, r.version
	FROM requests r
	JOIN users u ON u.id = r.user_id`

func (s *PostgresStore) Create(ctx context.Context, req *domain.Request) error {
	details, err := json.Marshal(req.Payload)
	if err != nil {
		return fmt.Errorf("marshal request details: %w", err)
	}
	_, err = txcontext.Conn(ctx, s.db).ExecContext(ctx, `
		INSERT INTO requests (id, user_id, request_type, status, details, rationale, created_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.UUID(req.ID), uuid.UUID(req.RequesterID), string(req.Kind()), string(req.Status),
		details, req.Rationale, req.CreatedAt, req.Version,
	)
	if postgres.IsUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.RequestID) (*domain.Request, error) {
	row := txcontext.Conn(ctx, s.db).QueryRowContext(ctx, selectRequest+` WHERE r.id = $1`, uuid.UUID(id))
	return scanRequest(row)
}

func (s *PostgresStore) ListByRequester(ctx context.Context, userID domain.UserID) ([]*domain.Request, error) {
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx,
		selectRequest+` WHERE r.user_id = $1 ORDER BY r.created_at DESC, r.id DESC`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return collectRequests(rows)
}

func (s *PostgresStore) ListAll(ctx context.Context, statuses []domain.RequestStatus) ([]*domain.Request, error) {
	var (
		rows *sql.Rows
		err  error
	)
	conn := txcontext.Conn(ctx, s.db)
	if len(statuses) == 0 {
		rows, err = conn.QueryContext(ctx, selectRequest+` ORDER BY r.created_at DESC, r.id DESC`)
	} else {
		names := make([]string, len(statuses))
		for i, st := range statuses {
			names[i] = string(st)
		}
		rows, err = conn.QueryContext(ctx,
			selectRequest+` WHERE r.status = ANY($1::text[]) ORDER BY r.created_at DESC, r.id DESC`, pq.Array(names))
	}
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return collectRequests(rows)
}

// Execute locks the row with SELECT ... FOR UPDATE, runs fn inside the same
// transaction (joining one already in ctx) and writes the decision fields
// back. Stores fn reaches through ctx share the transaction.
func (s *PostgresStore) Execute(ctx context.Context, id domain.RequestID, fn func(ctx context.Context, req *domain.Request) error) (*domain.Request, error) {
	var out *domain.Request
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectRequest+` WHERE r.id = $1 FOR UPDATE OF r`, uuid.UUID(id))
		req, err := scanRequest(row)
		if err != nil {
			return err
		}
		if err := fn(ctx, req); err != nil {
			return err
		}
		if err := req.CheckInvariants(); err != nil {
			return err
		}

		var decider any
		if req.DeciderID != nil {
			decider = uuid.UUID(*req.DeciderID)
		}
		reason := sql.NullString{String: req.RejectionReason, Valid: req.RejectionReason != ""}
		if _, err := tx.ExecContext(ctx, `
			UPDATE requests
			SET status = $2, decided_at = $3, admin_user_id = $4, rejection_reason = $5, version = $6
			WHERE id = $1`,
			uuid.UUID(req.ID), string(req.Status), req.DecidedAt, decider, reason, req.Version,
		); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*domain.Request, error) {
	var (
		req             domain.Request
		id, requester   uuid.UUID
		kind, status    string
		details         []byte
		decidedAt       sql.NullTime
		decider         uuid.NullUUID
		rejectionReason sql.NullString
	)
	err := row.Scan(&id, &requester, &req.Requester, &kind, &details, &req.Rationale, &status,
		&req.CreatedAt, &decidedAt, &decider, &rejectionReason, &req.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	payload, err := domain.DecodePayload(domain.RequestKind(kind), details)
	if err != nil {
		return nil, fmt.Errorf("decode request %s details: %w", id, err)
	}
	req.ID = domain.RequestID(id)
	req.RequesterID = domain.UserID(requester)
	req.Payload = payload
	req.Status = domain.RequestStatus(status)
	req.RejectionReason = rejectionReason.String
	if decidedAt.Valid {
		t := decidedAt.Time
		req.DecidedAt = &t
	}
	if decider.Valid {
		d := domain.UserID(decider.UUID)
		req.DeciderID = &d
	}
	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]*domain.Request, error) {
	defer rows.Close()
	out := []*domain.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

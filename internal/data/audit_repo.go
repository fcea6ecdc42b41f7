package data

// Package data contains Postgres-backed repositories. The UI API keeps
// only its own auth audit trail here; all business data stays in the
// platform backend.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/pesaflow/ongeza-ui-api/internal/errors"
	"github.com/pesaflow/ongeza-ui-api/internal/ports"
)

// DB is the subset of pgxpool.Pool the audit repository needs; pgxmock
// satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuditRepo persists auth lifecycle events.
type AuditRepo struct {
	db           DB
	timeProvider TimeProvider
}

// NewAuditRepo creates a new AuditRepo with real time provider.
func NewAuditRepo(db DB) *AuditRepo {
	return &AuditRepo{db: db, timeProvider: &RealTimeProvider{}}
}

// NewAuditRepoWithTimeProvider creates an AuditRepo with a custom time
// provider (useful for tests).
func NewAuditRepoWithTimeProvider(db DB, tp TimeProvider) *AuditRepo {
	return &AuditRepo{db: db, timeProvider: tp}
}

var _ ports.AuditRepository = (*AuditRepo)(nil)

const auditInsertQuery = `
	INSERT INTO auth_audit_events (id, user_id, email, kind, path, occurred_at, detail)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Record inserts one audit event. A zero ID and OccurredAt are filled in.
func (r *AuditRepo) Record(ctx context.Context, event ports.AuditEvent) error {
	if event.Kind == "" {
		return apperrors.Validation("audit event kind is required")
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.timeProvider.Now().UTC()
	}

	var detail []byte
	if event.Detail != nil {
		data, err := json.Marshal(event.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
		detail = data
	}

	_, err := r.db.Exec(ctx, auditInsertQuery,
		event.ID,
		event.UserID,
		event.Email,
		string(event.Kind),
		event.Path,
		event.OccurredAt,
		detail,
	)
	if err != nil {
		return r.mapWriteErr(err)
	}
	return nil
}

const auditListQuery = `
	SELECT id, user_id, email, kind, path, occurred_at, detail
	FROM auth_audit_events
	ORDER BY occurred_at DESC
	LIMIT $1`

// ListRecent returns the most recent audit events, newest first.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]ports.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(ctx, auditListQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []ports.AuditEvent
	for rows.Next() {
		var (
			event  ports.AuditEvent
			kind   string
			detail []byte
		)
		if scanErr := rows.Scan(&event.ID, &event.UserID, &event.Email, &kind,
			&event.Path, &event.OccurredAt, &detail); scanErr != nil {
			return nil, fmt.Errorf("scan audit event: %w", scanErr)
		}
		event.Kind = ports.AuditKind(kind)
		if len(detail) > 0 {
			if unmarshalErr := json.Unmarshal(detail, &event.Detail); unmarshalErr != nil {
				return nil, fmt.Errorf("unmarshal audit detail: %w", unmarshalErr)
			}
		}
		out = append(out, event)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate audit events: %w", rowsErr)
	}
	return out, nil
}

func (r *AuditRepo) mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "audit event already recorded")
	}
	return fmt.Errorf("record audit event: %w", err)
}

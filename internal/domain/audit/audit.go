package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends one audit event. Mutating handlers call it after the
// domain write succeeds; a failed append is logged by the caller, never
// rolled into the user-visible result.
func (s *Service) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID string, payload any) error {
	var payloadJSON []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		payloadJSON = encoded
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, request_id, payload_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, tenantID, actorID, action, entityType, entityID, requestID, payloadJSON)
	return err
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, limit, offset int) ([]Event, error) {
	query := `
    SELECT id, actor_user_id, action, entity_type, entity_id, request_id, created_at, payload_json
    FROM audit_events
    WHERE tenant_id = $1
  `
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Payload); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// Package sqlite provides SQLite-backed persistence for governance records.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/governance/storage"
	"github.com/plumehq/plume/internal/governance/storage/sqlite/migrations"
	sqlitemigrate "github.com/plumehq/plume/internal/platform/storage/sqlitemigrate"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for governance records.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	// modernc.org/sqlite only honors _pragma query parameters; foreign_keys
	// must be enabled per connection or content record cascades never fire.
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// DB returns the underlying sql.DB instance.
func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.sqlDB
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// topicRecord is the JSON shape for a persisted topic.
type topicRecord struct {
	Day         int    `json:"day"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Published   bool   `json:"published"`
	PublishedAt int64  `json:"published_at,omitempty"`
}

// clusterRecord is the JSON shape for a persisted topic cluster.
type clusterRecord struct {
	Category string        `json:"category"`
	Topics   []topicRecord `json:"topics"`
}

func encodeClusters(clusters []domain.TopicCluster) (string, error) {
	if len(clusters) == 0 {
		return "[]", nil
	}
	records := make([]clusterRecord, 0, len(clusters))
	for _, cluster := range clusters {
		topics := make([]topicRecord, 0, len(cluster.Topics))
		for _, topic := range cluster.Topics {
			record := topicRecord{
				Day:       topic.Day,
				Kind:      topic.Kind.String(),
				Title:     topic.Title,
				Published: topic.Published,
			}
			if !topic.PublishedAt.IsZero() {
				record.PublishedAt = toMillis(topic.PublishedAt)
			}
			topics = append(topics, record)
		}
		records = append(records, clusterRecord{Category: cluster.Category, Topics: topics})
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal clusters: %w", err)
	}
	return string(encoded), nil
}

func decodeClusters(value string) ([]domain.TopicCluster, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "[]" {
		return nil, nil
	}
	var records []clusterRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, fmt.Errorf("unmarshal clusters: %w", err)
	}
	clusters := make([]domain.TopicCluster, 0, len(records))
	for _, record := range records {
		topics := make([]domain.Topic, 0, len(record.Topics))
		for _, tr := range record.Topics {
			kind, err := domain.ParseTopicKind(tr.Kind)
			if err != nil {
				return nil, err
			}
			topic := domain.Topic{
				Day:       tr.Day,
				Kind:      kind,
				Title:     tr.Title,
				Published: tr.Published,
			}
			if tr.PublishedAt != 0 {
				topic.PublishedAt = fromMillis(tr.PublishedAt)
			}
			topics = append(topics, topic)
		}
		clusters = append(clusters, domain.TopicCluster{Category: record.Category, Topics: topics})
	}
	return clusters, nil
}

// PutSlot inserts or replaces a slot record.
func (s *Store) PutSlot(ctx context.Context, slot domain.Slot) error {
	clusters, err := encodeClusters(slot.Clusters)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO slots (
    id, tenant_id, timezone, clusters, cursor_cluster, cursor_topic,
    published_count, edit_success_count, risk_correction_count,
    account_status, trust_step, action_status, last_action_date,
    created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    tenant_id = excluded.tenant_id,
    timezone = excluded.timezone,
    clusters = excluded.clusters,
    cursor_cluster = excluded.cursor_cluster,
    cursor_topic = excluded.cursor_topic,
    published_count = excluded.published_count,
    edit_success_count = excluded.edit_success_count,
    risk_correction_count = excluded.risk_correction_count,
    account_status = excluded.account_status,
    trust_step = excluded.trust_step,
    action_status = excluded.action_status,
    last_action_date = excluded.last_action_date,
    updated_at = excluded.updated_at
`,
		slot.ID,
		slot.TenantID,
		slot.Timezone,
		clusters,
		slot.Cursor.Cluster,
		slot.Cursor.Topic,
		slot.Counters.Published,
		slot.Counters.EditSuccess,
		slot.Counters.RiskCorrection,
		slot.Counters.AccountStatus.String(),
		int(slot.Step),
		slot.ActionStatus.String(),
		slot.LastActionDate,
		toMillis(slot.CreatedAt),
		toMillis(slot.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put slot: %w", err)
	}
	return nil
}

// GetSlot returns a slot record by ID.
func (s *Store) GetSlot(ctx context.Context, id string) (domain.Slot, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, tenant_id, timezone, clusters, cursor_cluster, cursor_topic,
       published_count, edit_success_count, risk_correction_count,
       account_status, trust_step, action_status, last_action_date,
       created_at, updated_at
FROM slots WHERE id = ?
`, id)

	var (
		slot          domain.Slot
		clustersRaw   string
		accountStatus string
		actionStatus  string
		trustStep     int
		createdAt     int64
		updatedAt     int64
	)
	err := row.Scan(
		&slot.ID,
		&slot.TenantID,
		&slot.Timezone,
		&clustersRaw,
		&slot.Cursor.Cluster,
		&slot.Cursor.Topic,
		&slot.Counters.Published,
		&slot.Counters.EditSuccess,
		&slot.Counters.RiskCorrection,
		&accountStatus,
		&trustStep,
		&actionStatus,
		&slot.LastActionDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Slot{}, storage.ErrNotFound
		}
		return domain.Slot{}, fmt.Errorf("get slot: %w", err)
	}

	slot.Clusters, err = decodeClusters(clustersRaw)
	if err != nil {
		return domain.Slot{}, err
	}
	slot.Counters.AccountStatus, err = domain.ParseAccountStatus(accountStatus)
	if err != nil {
		return domain.Slot{}, err
	}
	slot.Step = domain.TrustStep(trustStep)
	slot.ActionStatus = parseActionStatus(actionStatus)
	slot.CreatedAt = fromMillis(createdAt)
	slot.UpdatedAt = fromMillis(updatedAt)
	return slot, nil
}

// ListSlotIDs returns all slot IDs in lexical order.
func (s *Store) ListSlotIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id FROM slots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list slot ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan slot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSlot removes a slot; content records cascade via foreign key.
func (s *Store) DeleteSlot(ctx context.Context, id string) error {
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// PutContent inserts a published content record.
func (s *Store) PutContent(ctx context.Context, record storage.ContentRecord) error {
	corrected := 0
	if record.Corrected {
		corrected = 1
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO content_records (id, slot_id, topic_title, body, corrected, published_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		record.ID,
		record.SlotID,
		record.TopicTitle,
		record.Body,
		corrected,
		toMillis(record.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("put content: %w", err)
	}
	return nil
}

// ListContentBySlot returns content records for a slot, oldest first.
func (s *Store) ListContentBySlot(ctx context.Context, slotID string) ([]storage.ContentRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, slot_id, topic_title, body, corrected, published_at
FROM content_records WHERE slot_id = ? ORDER BY published_at
`, slotID)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var records []storage.ContentRecord
	for rows.Next() {
		var (
			record      storage.ContentRecord
			corrected   int
			publishedAt int64
		)
		if err := rows.Scan(&record.ID, &record.SlotID, &record.TopicTitle, &record.Body, &corrected, &publishedAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		record.Corrected = corrected != 0
		record.PublishedAt = fromMillis(publishedAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// AppendTelemetryEvent records a governance telemetry event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	detail := "{}"
	if len(event.Detail) > 0 {
		encoded, err := json.Marshal(event.Detail)
		if err != nil {
			return fmt.Errorf("marshal telemetry detail: %w", err)
		}
		detail = string(encoded)
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (slot_id, kind, detail, ts) VALUES (?, ?, ?, ?)
`,
		event.SlotID,
		event.Kind,
		detail,
		toMillis(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}

// ListTelemetryEvents returns up to limit most recent events for a slot,
// oldest first.
func (s *Store) ListTelemetryEvents(ctx context.Context, slotID string, limit int) ([]storage.TelemetryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT slot_id, kind, detail, ts FROM (
    SELECT slot_id, kind, detail, ts FROM telemetry_events
    WHERE slot_id = ? ORDER BY ts DESC, id DESC LIMIT ?
) ORDER BY ts
`, slotID, limit)
	if err != nil {
		return nil, fmt.Errorf("list telemetry events: %w", err)
	}
	defer rows.Close()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var (
			event  storage.TelemetryEvent
			detail string
			ts     int64
		)
		if err := rows.Scan(&event.SlotID, &event.Kind, &detail, &ts); err != nil {
			return nil, fmt.Errorf("scan telemetry event: %w", err)
		}
		if detail != "" && detail != "{}" {
			if err := json.Unmarshal([]byte(detail), &event.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal telemetry detail: %w", err)
			}
		}
		event.Timestamp = fromMillis(ts)
		events = append(events, event)
	}
	return events, rows.Err()
}

func parseActionStatus(value string) domain.ActionStatus {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "GENERATING":
		return domain.ActionGenerating
	case "RISK_CHECK":
		return domain.ActionRiskCheck
	case "SCHEDULING":
		return domain.ActionScheduling
	case "COMPLETED":
		return domain.ActionCompleted
	default:
		return domain.ActionIdle
	}
}

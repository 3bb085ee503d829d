package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// AuditRepository appends audit entries to the auditLogs collection.
type AuditRepository struct {
	base
}

// NewAuditRepository creates an AuditRepository.
func NewAuditRepository(store database.DocumentStore, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{base: newBase(store, logger)}
}

// Create stores an entry. A zero timestamp is replaced with the current time.
func (r *AuditRepository) Create(ctx context.Context, logEntry models.AuditLog) error {
	if err := models.Validate(&logEntry); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	if logEntry.Timestamp.IsZero() {
		logEntry.Timestamp = r.now()
	}
	if _, err := r.store.Create(ctx, AuditLogsCollection, logEntry.Fields()); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// ListRecent returns up to limit entries, newest first. A non-positive limit returns all.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	docs, err := r.store.Latest(ctx, AuditLogsCollection, "timestamp", limit)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	entries := make([]*models.AuditLog, 0, len(docs))
	for _, doc := range docs {
		var entry models.AuditLog
		if err := database.Decode(doc, &entry); err != nil {
			return nil, fmt.Errorf("list audit logs: %w", err)
		}
		entry.ID = doc.ID
		entries = append(entries, &entry)
	}
	return entries, nil
}

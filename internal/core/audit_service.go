package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type auditService struct {
	auditRepo db.AuditStore
	logger    *zap.Logger
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(auditRepo db.AuditStore, logger *zap.Logger) AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &auditService{auditRepo: auditRepo, logger: logger}
}

func (s *auditService) CreateAuditLog(ctx context.Context, logEntry models.AuditLog) error {
	if err := s.auditRepo.Create(ctx, logEntry); err != nil {
		return fmt.Errorf("failed to create audit log via repository: %w", err)
	}
	return nil
}

// ListAuditLogs returns the newest entries first. limit is clamped to [1, 500] and
// defaults to 50.
func (s *auditService) ListAuditLogs(ctx context.Context, sess *Session, limit int) ([]*models.AuditLog, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	return s.auditRepo.ListRecent(ctx, limit)
}

// record writes an audit entry for an admin action. A failed write is logged and never
// fails the action it describes.
func record(ctx context.Context, audit AuditService, logger *zap.Logger, sess *Session, action, targetType, targetID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	entry := models.AuditLog{
		UserID:     actorID(sess),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	}
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log",
			zap.String("action", action),
			zap.String("targetId", targetID),
			zap.Error(err))
	}
}

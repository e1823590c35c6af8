package approval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History returns the document's append-only audit trail, oldest first.
func (e *Engine) History(ctx context.Context, documentID string) ([]ApprovalHistory, error) {
	var entries []ApprovalHistory
	if err := e.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// appendHistory writes one audit entry inside the caller's transaction.
// Entries are insert-only; nothing in this codebase updates or deletes
// approval_histories rows.
func appendHistory(tx *gorm.DB, documentID string, action HistoryAction, actorID string, comment *string) error {
	entry := &ApprovalHistory{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Action:     action,
		ActorID:    actorID,
		Comment:    comment,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

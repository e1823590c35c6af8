package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/metrics"
	"backend/internal/notification"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeclineMode distinguishes a permanent decline from a revision request.
type DeclineMode string

const (
	DeclineModeDecline  DeclineMode = "decline"
	DeclineModeRevision DeclineMode = "revision"
)

// IsValid reports whether the mode is known.
func (m DeclineMode) IsValid() bool {
	return m == DeclineModeDecline || m == DeclineModeRevision
}

// DocumentStatusWriter persists the projected status onto the owning
// document row inside the engine's transaction. The procurement package
// implements it; injection keeps the engine ignorant of document tables.
type DocumentStatusWriter interface {
	UpdateDocumentStatus(tx *gorm.DB, documentID string, status DocumentStatus) error
}

// TransitionResult is returned from every successful state change.
type TransitionResult struct {
	DocumentID string         `json:"documentId"`
	Status     DocumentStatus `json:"status"`
	Steps      []ApprovalStep `json:"steps"`
}

// Engine drives a document's approval chain one step at a time: it
// validates actor eligibility, applies approve/decline/revision
// transitions, and recomputes the parent document's status after every
// write. All writes are transactional and the status flip is guarded by a
// conditional update, so two racing actors cannot both win a step.
type Engine struct {
	db           *gorm.DB
	notifier     notification.Notifier
	statusWriter DocumentStatusWriter
	logger       *zap.Logger
}

// EngineOption customizes the engine.
type EngineOption func(*Engine)

// WithNotifier injects the outbound notification channel.
func WithNotifier(n notification.Notifier) EngineOption {
	return func(e *Engine) { e.notifier = n }
}

// WithStatusWriter injects the document status persistence hook.
func WithStatusWriter(w DocumentStatusWriter) EngineOption {
	return func(e *Engine) { e.statusWriter = w }
}

// WithEngineLogger injects a custom logger.
func WithEngineLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates the approval state machine.
func NewEngine(db *gorm.DB, opts ...EngineOption) *Engine {
	e := &Engine{
		db:     db,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Steps returns the document's chain ordered by step order.
func (e *Engine) Steps(ctx context.Context, documentID string) ([]ApprovalStep, error) {
	return loadSteps(e.db.WithContext(ctx), documentID)
}

// GetCurrentStep returns the step awaiting action, or nil when the chain
// is closed (fully approved, declined, or awaiting revision).
func (e *Engine) GetCurrentStep(ctx context.Context, documentID string) (*ApprovalStep, error) {
	steps, err := e.Steps(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return CurrentStep(steps), nil
}

// CanAct reports whether the actor may decide the step: the exact user
// when the step names one, otherwise any holder of the step's role. The
// broader may-review capability check lives in the auth layer, not here.
func (e *Engine) CanAct(step *ApprovalStep, actor Actor) bool {
	if step == nil {
		return false
	}
	if step.SpecificUserID != nil && *step.SpecificUserID != "" {
		return actor.ID == *step.SpecificUserID
	}
	return actor.RoleID == step.RoleID
}

// Approve marks the current step approved. If it was the last step the
// document projects to approved; otherwise the next step becomes current.
func (e *Engine) Approve(ctx context.Context, documentID string, stepOrder int, actor Actor) (*TransitionResult, error) {
	result, err := e.decide(ctx, documentID, stepOrder, actor, StepStatusApproved, nil, HistoryApproved)
	if err != nil {
		return nil, err
	}
	e.afterTransition(ctx, "approved", actor, result)
	return result, nil
}

// Decline closes the chain. Mode "decline" is permanent: the document
// projects to rejected. Mode "revision" hands the document back to its
// creator for editing; on Resubmit the chain restarts from step one.
func (e *Engine) Decline(ctx context.Context, documentID string, stepOrder int, actor Actor, comment string, mode DeclineMode) (*TransitionResult, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: unknown decline mode %q", ErrInvalidTransition, mode)
	}

	status := StepStatusDeclined
	action := HistoryDeclined
	event := "declined"
	if mode == DeclineModeRevision {
		status = StepStatusRevision
		action = HistoryRevisionRequested
		event = "revision_requested"
	}

	var commentPtr *string
	if comment != "" {
		commentPtr = &comment
	}

	result, err := e.decide(ctx, documentID, stepOrder, actor, status, commentPtr, action)
	if err != nil {
		return nil, err
	}
	e.afterTransition(ctx, event, actor, result)
	return result, nil
}

// Resubmit restarts a chain closed by a revision request. The same step
// rows are reused: every step goes back to "updated" (the re-entrant
// pending variant, kept distinct from a pristine submission for display),
// decision fields are cleared, and the chain is current at step one again.
// History keeps the original entries and gains a "resubmitted" one.
func (e *Engine) Resubmit(ctx context.Context, documentID, requesterID string) (*TransitionResult, error) {
	var result *TransitionResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := loadSteps(tx, documentID)
		if err != nil {
			return err
		}
		if ProjectStatus(steps) != DocumentStatusRevision {
			return fmt.Errorf("%w: document is not awaiting revision", ErrInvalidTransition)
		}

		if err := tx.Model(&ApprovalStep{}).
			Where("document_id = ?", documentID).
			Updates(map[string]any{
				"status":   StepStatusUpdated,
				"actor_id": nil,
				"acted_at": nil,
				"comment":  nil,
			}).Error; err != nil {
			return fmt.Errorf("reset steps: %w", err)
		}

		if err := appendHistory(tx, documentID, HistoryResubmitted, requesterID, nil); err != nil {
			return err
		}

		reloaded, err := loadSteps(tx, documentID)
		if err != nil {
			return err
		}
		status := ProjectStatus(reloaded)
		if err := e.writeDocumentStatus(tx, documentID, status); err != nil {
			return err
		}

		result = &TransitionResult{DocumentID: documentID, Status: status, Steps: reloaded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterTransition(ctx, "resubmitted", Actor{ID: requesterID}, result)
	return result, nil
}

// Complete marks a fully approved chain completed, the downstream
// conversion transition (PR→PO). It appends the history entry and writes
// the final document status; the step rows stay approved.
func (e *Engine) Complete(ctx context.Context, documentID, actorID string) (*TransitionResult, error) {
	var result *TransitionResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := loadSteps(tx, documentID)
		if err != nil {
			return err
		}
		if ProjectStatus(steps) != DocumentStatusApproved {
			return fmt.Errorf("%w: document is not fully approved", ErrInvalidTransition)
		}

		if err := appendHistory(tx, documentID, HistoryCompleted, actorID, nil); err != nil {
			return err
		}
		if err := e.writeDocumentStatus(tx, documentID, DocumentStatusCompleted); err != nil {
			return err
		}

		result = &TransitionResult{DocumentID: documentID, Status: DocumentStatusCompleted, Steps: steps}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterTransition(ctx, "completed", Actor{ID: actorID}, result)
	return result, nil
}

// decide applies one terminal-for-step transition to the current step.
func (e *Engine) decide(ctx context.Context, documentID string, stepOrder int, actor Actor, newStatus StepStatus, comment *string, action HistoryAction) (*TransitionResult, error) {
	var result *TransitionResult

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps, err := loadSteps(tx, documentID)
		if err != nil {
			return err
		}

		var target *ApprovalStep
		for i := range steps {
			if steps[i].StepOrder == stepOrder {
				target = &steps[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("%w: step %d of document %s", ErrStepNotFound, stepOrder, documentID)
		}

		current := CurrentStep(steps)
		if current == nil || current.ID != target.ID {
			return fmt.Errorf("%w: step %d is not the current step", ErrInvalidTransition, stepOrder)
		}
		if !actor.IsSystem() && !e.CanAct(current, actor) {
			return fmt.Errorf("%w: actor %s cannot decide step %d", ErrForbidden, actor.ID, stepOrder)
		}

		now := time.Now().UTC()
		res := tx.Model(&ApprovalStep{}).
			Where("id = ? AND status IN ?", current.ID, []StepStatus{StepStatusPending, StepStatusUpdated}).
			Updates(map[string]any{
				"status":   newStatus,
				"actor_id": actor.ID,
				"acted_at": now,
				"comment":  comment,
			})
		if res.Error != nil {
			return fmt.Errorf("update step: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConcurrencyConflict
		}

		if err := appendHistory(tx, documentID, action, actor.ID, comment); err != nil {
			return err
		}

		reloaded, err := loadSteps(tx, documentID)
		if err != nil {
			return err
		}
		status := ProjectStatus(reloaded)
		if err := e.writeDocumentStatus(tx, documentID, status); err != nil {
			return err
		}

		result = &TransitionResult{DocumentID: documentID, Status: status, Steps: reloaded}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) writeDocumentStatus(tx *gorm.DB, documentID string, status DocumentStatus) error {
	if e.statusWriter == nil {
		return nil
	}
	if err := e.statusWriter.UpdateDocumentStatus(tx, documentID, status); err != nil {
		return fmt.Errorf("write document status: %w", err)
	}
	return nil
}

// afterTransition records metrics and fires the best-effort notification.
func (e *Engine) afterTransition(ctx context.Context, event string, actor Actor, result *TransitionResult) {
	origin := "manual"
	if actor.IsSystem() {
		origin = "system"
	}
	metrics.ApprovalDecisionsTotal.WithLabelValues(event, origin).Inc()

	e.logger.Info("approval transition",
		zap.String("document_id", result.DocumentID),
		zap.String("event", event),
		zap.String("actor_id", actor.ID),
		zap.String("document_status", string(result.Status)),
	)

	if e.notifier == nil {
		return
	}
	n := &notification.Notification{
		Type:    "webhook",
		Subject: fmt.Sprintf("approval %s", event),
		Body:    fmt.Sprintf("document %s is now %s", result.DocumentID, result.Status),
		Data: map[string]any{
			"document_id": result.DocumentID,
			"event":       event,
			"status":      string(result.Status),
			"actor_id":    actor.ID,
		},
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.notifier.Send(sendCtx, n); err != nil {
			e.logger.Warn("transition notification failed", zap.Error(err))
		}
	}()
}

// loadSteps reads a document's chain ordered by step order and fails with
// ErrDocumentNotFound when the document has no chain at all.
func loadSteps(tx *gorm.DB, documentID string) ([]ApprovalStep, error) {
	var steps []ApprovalStep
	if err := tx.
		Where("document_id = ?", documentID).
		Order("step_order ASC").
		Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	return steps, nil
}

// IsConflict reports whether the error is the optimistic-lock failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

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

// Resolver evaluates the overtime policy of steps whose duration elapsed
// without a decision. It is idempotent: resolving an already-terminal or
// not-yet-current step is a no-op, never an error. The resolver is driven
// by the scheduled overtime scan, not by the request path.
type Resolver struct {
	db       *gorm.DB
	engine   *Engine
	notifier notification.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// ResolverOption customizes the resolver.
type ResolverOption func(*Resolver)

// WithResolverNotifier injects the notification channel used for the
// notify-and-wait policy.
func WithResolverNotifier(n notification.Notifier) ResolverOption {
	return func(r *Resolver) { r.notifier = n }
}

// WithResolverLogger injects a custom logger.
func WithResolverLogger(l *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// WithResolverClock overrides the time source, used by tests to simulate
// elapsed durations.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates an overtime resolver bound to the engine.
func NewResolver(db *gorm.DB, engine *Engine, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		db:     db,
		engine: engine,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ResolveOvertime checks one step against its SLA window. The dwell clock
// starts at the previous step's actedAt, or at the document submission for
// step one; duration is per-step, not cumulative.
func (r *Resolver) ResolveOvertime(ctx context.Context, stepID string) error {
	var step ApprovalStep
	if err := r.db.WithContext(ctx).First(&step, "id = ?", stepID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
		}
		return fmt.Errorf("load step: %w", err)
	}

	// Terminal steps and steps that are not current are no-ops.
	if step.Status.IsTerminal() {
		return nil
	}
	steps, err := loadSteps(r.db.WithContext(ctx), step.DocumentID)
	if err != nil {
		return err
	}
	current := CurrentStep(steps)
	if current == nil || current.ID != step.ID {
		return nil
	}

	becamePendingAt, err := r.stepBecamePendingAt(ctx, steps, current)
	if err != nil {
		return err
	}
	if becamePendingAt.IsZero() || r.now().Sub(becamePendingAt) <= current.Duration() {
		return nil
	}

	switch current.OvertimeAction {
	case OvertimeAutoDecline:
		return r.autoDecline(ctx, current)
	default:
		// NotifyAndWait: the step stays actionable indefinitely until a
		// human acts; we only emit the reminder.
		r.notifyOvertime(ctx, current)
		metrics.ApprovalOvertimeTotal.WithLabelValues(string(OvertimeNotify)).Inc()
		return nil
	}
}

// ScanOvertime walks every open chain and resolves its current step.
// Returns the number of steps evaluated. Used by the scheduled worker.
// The scan also refreshes the pending-steps gauge: one actionable current
// step per open chain, at scan time.
func (r *Resolver) ScanOvertime(ctx context.Context) (int, error) {
	var documentIDs []string
	if err := r.db.WithContext(ctx).
		Model(&ApprovalStep{}).
		Where("status IN ?", []StepStatus{StepStatusPending, StepStatusUpdated}).
		Distinct("document_id").
		Pluck("document_id", &documentIDs).Error; err != nil {
		return 0, fmt.Errorf("scan open chains: %w", err)
	}

	evaluated := 0
	pending := 0
	for _, documentID := range documentIDs {
		steps, err := loadSteps(r.db.WithContext(ctx), documentID)
		if err != nil {
			r.logger.Warn("overtime scan skipped document", zap.String("document_id", documentID), zap.Error(err))
			continue
		}
		current := CurrentStep(steps)
		if current == nil {
			continue
		}
		pending++
		if err := r.ResolveOvertime(ctx, current.ID); err != nil {
			r.logger.Warn("overtime resolution failed",
				zap.String("document_id", documentID),
				zap.String("step_id", current.ID),
				zap.Error(err),
			)
			continue
		}
		evaluated++
	}
	metrics.ApprovalPendingGauge.Set(float64(pending))
	return evaluated, nil
}

// stepBecamePendingAt finds the dwell-clock basis for the current step.
func (r *Resolver) stepBecamePendingAt(ctx context.Context, steps []ApprovalStep, current *ApprovalStep) (time.Time, error) {
	if current.StepOrder > 1 {
		for i := range steps {
			if steps[i].StepOrder == current.StepOrder-1 {
				if steps[i].ActedAt != nil {
					return *steps[i].ActedAt, nil
				}
				return time.Time{}, nil
			}
		}
		return time.Time{}, nil
	}

	// Step one: the clock starts at the latest (re)submission.
	var entry ApprovalHistory
	err := r.db.WithContext(ctx).
		Where("document_id = ? AND action IN ?", current.DocumentID,
			[]HistoryAction{HistorySubmitted, HistoryResubmitted}).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("load submission time: %w", err)
	}
	return entry.CreatedAt, nil
}

// autoDecline performs the system decline. Losing the race to a human
// decision is expected and treated as a no-op.
func (r *Resolver) autoDecline(ctx context.Context, step *ApprovalStep) error {
	_, err := r.engine.Decline(ctx, step.DocumentID, step.StepOrder,
		SystemActor(), "Auto-declined: overtime", DeclineModeDecline)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrConcurrencyConflict) {
			return nil
		}
		return err
	}

	metrics.ApprovalOvertimeTotal.WithLabelValues(string(OvertimeAutoDecline)).Inc()
	r.logger.Info("step auto-declined on overtime",
		zap.String("document_id", step.DocumentID),
		zap.Int("step_order", step.StepOrder),
	)
	return nil
}

func (r *Resolver) notifyOvertime(ctx context.Context, step *ApprovalStep) {
	if r.notifier == nil {
		return
	}
	n := &notification.Notification{
		Type:    "webhook",
		Subject: "approval step overdue",
		Body:    fmt.Sprintf("step %d of document %s is past its review window", step.StepOrder, step.DocumentID),
		Data: map[string]any{
			"document_id": step.DocumentID,
			"step_order":  step.StepOrder,
			"role_id":     step.RoleID,
		},
	}
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := r.notifier.Send(sendCtx, n); err != nil {
			r.logger.Warn("overtime notification failed", zap.Error(err))
		}
	}()
}

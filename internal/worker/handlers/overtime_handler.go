package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// OvertimeResolver abstracts the approval overtime resolver so the
// handler can be tested with a mock.
type OvertimeResolver interface {
	ScanOvertime(ctx context.Context) (int, error)
	ResolveOvertime(ctx context.Context, stepID string) error
}

type OvertimeHandler struct {
	resolver OvertimeResolver
	logger   *zap.Logger
}

func NewOvertimeHandler(resolver OvertimeResolver, logger *zap.Logger) *OvertimeHandler {
	return &OvertimeHandler{
		resolver: resolver,
		logger:   logger,
	}
}

func (h *OvertimeHandler) HandleOvertimeScan(ctx context.Context, t *asynq.Task) error {
	h.logger.Info("starting approval overtime scan")

	evaluated, err := h.resolver.ScanOvertime(ctx)
	if err != nil {
		h.logger.Error("overtime scan failed", zap.Error(err))
		return err
	}

	h.logger.Info("approval overtime scan finished", zap.Int("steps_evaluated", evaluated))
	return nil
}

func (h *OvertimeHandler) HandleOvertimeResolve(ctx context.Context, t *asynq.Task) error {
	var p tasks.OvertimeResolvePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json unmarshal failed: %w", err)
	}

	if err := h.resolver.ResolveOvertime(ctx, p.StepID); err != nil {
		h.logger.Error("overtime resolve failed",
			zap.String("step_id", p.StepID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

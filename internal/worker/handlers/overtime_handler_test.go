package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap/zaptest"
)

type fakeResolver struct {
	scanned    bool
	resolvedID string
	evaluated  int
	retErr     error
}

func (f *fakeResolver) ScanOvertime(ctx context.Context) (int, error) {
	f.scanned = true
	return f.evaluated, f.retErr
}

func (f *fakeResolver) ResolveOvertime(ctx context.Context, stepID string) error {
	f.resolvedID = stepID
	return f.retErr
}

func TestOvertimeHandlerHandleOvertimeScan_Success(t *testing.T) {
	resolver := &fakeResolver{evaluated: 3}
	h := NewOvertimeHandler(resolver, zaptest.NewLogger(t))
	task := asynq.NewTask(tasks.TypeOvertimeScan, nil)
	if err := h.HandleOvertimeScan(context.Background(), task); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resolver.scanned {
		t.Fatal("resolver was not invoked")
	}
}

func TestOvertimeHandlerHandleOvertimeScan_Error(t *testing.T) {
	expectedErr := errors.New("boom")
	resolver := &fakeResolver{retErr: expectedErr}
	h := NewOvertimeHandler(resolver, zaptest.NewLogger(t))
	task := asynq.NewTask(tasks.TypeOvertimeScan, nil)
	if err := h.HandleOvertimeScan(context.Background(), task); !errors.Is(err, expectedErr) {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
}

func TestOvertimeHandlerHandleOvertimeResolve(t *testing.T) {
	resolver := &fakeResolver{}
	h := NewOvertimeHandler(resolver, zaptest.NewLogger(t))
	payload, _ := json.Marshal(tasks.OvertimeResolvePayload{StepID: "step-7"})
	task := asynq.NewTask(tasks.TypeOvertimeResolve, payload)
	if err := h.HandleOvertimeResolve(context.Background(), task); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resolver.resolvedID != "step-7" {
		t.Fatalf("resolver invoked with wrong step: %s", resolver.resolvedID)
	}
}

func TestOvertimeHandlerHandleOvertimeResolve_BadPayload(t *testing.T) {
	resolver := &fakeResolver{}
	h := NewOvertimeHandler(resolver, zaptest.NewLogger(t))
	task := asynq.NewTask(tasks.TypeOvertimeResolve, []byte("not json"))
	if err := h.HandleOvertimeResolve(context.Background(), task); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if resolver.resolvedID != "" {
		t.Fatal("resolver should not be invoked on bad payload")
	}
}

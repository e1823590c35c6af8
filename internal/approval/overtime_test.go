package approval

import (
	"context"
	"testing"
	"time"

	"backend/internal/metrics"
	"backend/internal/notification"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func autoDeclineInputs() []StepInput {
	return []StepInput{
		{RoleID: "role-gm", DurationSeconds: 3600, OvertimeAction: OvertimeAutoDecline},
		{RoleID: "role-cfo", DurationSeconds: 3600, OvertimeAction: OvertimeAutoDecline},
	}
}

func TestResolveOvertimeAutoDecline(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", autoDeclineInputs())

	resolver := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	ctx := context.Background()

	require.NoError(t, resolver.ResolveOvertime(ctx, steps[0].ID))

	reloaded, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusDeclined, reloaded[0].Status)
	require.Equal(t, SystemActorID, *reloaded[0].ActorID)
	require.Equal(t, "Auto-declined: overtime", *reloaded[0].Comment)
	require.Equal(t, DocumentStatusRejected, ProjectStatus(reloaded))

	history, err := engine.History(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, HistoryDeclined, history[len(history)-1].Action)
	require.Equal(t, SystemActorID, history[len(history)-1].ActorID)
}

func TestResolveOvertimeIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", autoDeclineInputs())

	resolver := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	ctx := context.Background()

	require.NoError(t, resolver.ResolveOvertime(ctx, steps[0].ID))
	// The step is terminal now; resolving again must be a no-op, and the
	// audit trail must not grow.
	require.NoError(t, resolver.ResolveOvertime(ctx, steps[0].ID))

	history, err := engine.History(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, history, 2) // submitted + declined
}

func TestResolveOvertimeWithinWindowIsNoop(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", autoDeclineInputs())

	resolver := NewResolver(db, engine)
	ctx := context.Background()

	require.NoError(t, resolver.ResolveOvertime(ctx, steps[0].ID))

	reloaded, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusPending, reloaded[0].Status)
}

func TestResolveOvertimeSkipsNonCurrentStep(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", autoDeclineInputs())

	resolver := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	ctx := context.Background()

	// Step 2 is not current; its dwell clock has not started.
	require.NoError(t, resolver.ResolveOvertime(ctx, steps[1].ID))

	reloaded, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusPending, reloaded[1].Status)
}

func TestOvertimeDwellClockStartsAtPreviousDecision(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", autoDeclineInputs())
	ctx := context.Background()

	// Step 1 sat for a long time before being approved; step 2's window
	// starts at that approval, so it is not yet overdue.
	_, err := engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)

	resolver := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(30 * time.Minute) }))
	require.NoError(t, resolver.ResolveOvertime(ctx, steps[1].ID))

	reloaded, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusPending, reloaded[1].Status)

	// Past the hour it auto-declines.
	late := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	require.NoError(t, late.ResolveOvertime(ctx, steps[1].ID))

	reloaded, err = engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusDeclined, reloaded[1].Status)
}

func TestResolveOvertimeNotifyKeepsStepActionable(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	steps := instantiateChain(t, db, "doc-1", []StepInput{
		{RoleID: "role-gm", DurationSeconds: 3600, OvertimeAction: OvertimeNotify},
	})

	notifier := &chanNotifier{ch: make(chan *notification.Notification, 1)}
	resolver := NewResolver(db, engine,
		WithResolverNotifier(notifier),
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	ctx := context.Background()

	require.NoError(t, resolver.ResolveOvertime(ctx, steps[0].ID))

	select {
	case msg := <-notifier.ch:
		require.Equal(t, "doc-1", msg.Data["document_id"])
	case <-time.After(time.Second):
		t.Fatal("did not receive overtime notification")
	}

	// The step stays open for a human decision.
	reloaded, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, StepStatusPending, reloaded[0].Status)

	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
}

func TestResolveOvertimeUnknownStep(t *testing.T) {
	db := openTestDB(t)
	resolver := NewResolver(db, NewEngine(db))

	err := resolver.ResolveOvertime(context.Background(), "missing")
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestScanOvertime(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", autoDeclineInputs())
	instantiateChain(t, db, "doc-2", autoDeclineInputs())

	resolver := NewResolver(db, engine,
		WithResolverClock(func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }))
	ctx := context.Background()

	evaluated, err := resolver.ScanOvertime(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, evaluated)

	for _, docID := range []string{"doc-1", "doc-2"} {
		steps, err := engine.Steps(ctx, docID)
		require.NoError(t, err)
		require.Equal(t, StepStatusDeclined, steps[0].Status)
	}

	// Both chains are closed; nothing left to evaluate.
	evaluated, err = resolver.ScanOvertime(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, evaluated)
}

func TestScanOvertimeRefreshesPendingGauge(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	instantiateChain(t, db, "doc-2", threeStepInputs())

	resolver := NewResolver(db, engine)
	ctx := context.Background()

	_, err := resolver.ScanOvertime(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(2), testutil.ToFloat64(metrics.ApprovalPendingGauge))

	// Deciding steps must be reflected at the next scan, not accumulate.
	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 2, actorCFO)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 3, actorCEO)
	require.NoError(t, err)
	_, err = resolver.ScanOvertime(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.ApprovalPendingGauge))

	// A declined chain keeps later rows pending but freezes the document,
	// so it no longer counts as awaiting a decision.
	_, err = engine.Decline(ctx, "doc-2", 1, actorGM, "over budget", DeclineModeDecline)
	require.NoError(t, err)
	_, err = resolver.ScanOvertime(ctx)
	require.NoError(t, err)
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.ApprovalPendingGauge))
}

package approval

import (
	"context"
	"sync"
	"testing"

	"backend/internal/notification"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	actorGM  = Actor{ID: "user-gm", RoleID: "role-gm"}
	actorCFO = Actor{ID: "user-cfo", RoleID: "role-cfo"}
	actorCEO = Actor{ID: "user-ceo", RoleID: "role-ceo"}
)

// recordingStatusWriter captures every projected status the engine writes.
type recordingStatusWriter struct {
	mu       sync.Mutex
	statuses []DocumentStatus
}

func (w *recordingStatusWriter) UpdateDocumentStatus(tx *gorm.DB, documentID string, status DocumentStatus) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.statuses = append(w.statuses, status)
	return nil
}

func (w *recordingStatusWriter) last() DocumentStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.statuses) == 0 {
		return ""
	}
	return w.statuses[len(w.statuses)-1]
}

func TestApproveFullChain(t *testing.T) {
	db := openTestDB(t)
	writer := &recordingStatusWriter{}
	engine := NewEngine(db, WithStatusWriter(writer))
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	result, err := engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	require.Equal(t, DocumentStatusPending, result.Status)

	current, err := engine.GetCurrentStep(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, 2, current.StepOrder)

	_, err = engine.Approve(ctx, "doc-1", 2, actorCFO)
	require.NoError(t, err)

	result, err = engine.Approve(ctx, "doc-1", 3, actorCEO)
	require.NoError(t, err)
	require.Equal(t, DocumentStatusApproved, result.Status)
	require.Equal(t, DocumentStatusApproved, writer.last())

	current, err = engine.GetCurrentStep(ctx, "doc-1")
	require.NoError(t, err)
	require.Nil(t, current)

	// Decision fields are stamped on the acted steps.
	steps, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, "user-gm", *steps[0].ActorID)
	require.NotNil(t, steps[0].ActedAt)
}

func TestApproveOutOfOrderFails(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	// Step 2 is not current while step 1 is pending.
	_, err := engine.Approve(ctx, "doc-1", 2, actorCFO)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Approving the same step twice: the second attempt targets a step
	// that is no longer current.
	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApproveWrongActorFails(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Approve(ctx, "doc-1", 1, actorCFO)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestApproveUnknownStepAndDocument(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Approve(ctx, "doc-1", 9, actorGM)
	require.ErrorIs(t, err, ErrStepNotFound)

	_, err = engine.Approve(ctx, "doc-missing", 1, actorGM)
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDeclineFreezesChain(t *testing.T) {
	db := openTestDB(t)
	writer := &recordingStatusWriter{}
	engine := NewEngine(db, WithStatusWriter(writer))
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)

	result, err := engine.Decline(ctx, "doc-1", 2, actorCFO, "over budget", DeclineModeDecline)
	require.NoError(t, err)
	require.Equal(t, DocumentStatusRejected, result.Status)
	require.Equal(t, DocumentStatusRejected, writer.last())

	// Later steps can never activate.
	current, err := engine.GetCurrentStep(ctx, "doc-1")
	require.NoError(t, err)
	require.Nil(t, current)

	_, err = engine.Approve(ctx, "doc-1", 3, actorCEO)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// The decline comment survives on the step.
	steps, err := engine.Steps(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, "over budget", *steps[1].Comment)
}

func TestRevisionAndResubmitCycle(t *testing.T) {
	db := openTestDB(t)
	writer := &recordingStatusWriter{}
	engine := NewEngine(db, WithStatusWriter(writer))
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)

	result, err := engine.Decline(ctx, "doc-1", 2, actorCFO, "split the items", DeclineModeRevision)
	require.NoError(t, err)
	require.Equal(t, DocumentStatusRevision, result.Status)

	// Resubmission reuses the same step rows: all reset to updated, step
	// one current again, decision fields cleared.
	result, err = engine.Resubmit(ctx, "doc-1", "requester-1")
	require.NoError(t, err)
	require.Equal(t, DocumentStatusPending, result.Status)
	for _, s := range result.Steps {
		require.Equal(t, StepStatusUpdated, s.Status)
		require.Nil(t, s.ActorID)
		require.Nil(t, s.ActedAt)
		require.Nil(t, s.Comment)
	}

	current, err := engine.GetCurrentStep(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, 1, current.StepOrder)

	// The restarted chain approves end to end, including the step that
	// previously asked for revision.
	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 2, actorCFO)
	require.NoError(t, err)
	result, err = engine.Approve(ctx, "doc-1", 3, actorCEO)
	require.NoError(t, err)
	require.Equal(t, DocumentStatusApproved, result.Status)

	// History kept the whole story in order.
	history, err := engine.History(ctx, "doc-1")
	require.NoError(t, err)
	actions := make([]HistoryAction, 0, len(history))
	for _, entry := range history {
		actions = append(actions, entry.Action)
	}
	require.Equal(t, []HistoryAction{
		HistorySubmitted,
		HistoryApproved,
		HistoryRevisionRequested,
		HistoryResubmitted,
		HistoryApproved,
		HistoryApproved,
		HistoryApproved,
	}, actions)
}

func TestResubmitRequiresRevision(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Resubmit(ctx, "doc-1", "requester-1")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDeclineRejectsUnknownMode(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())

	_, err := engine.Decline(context.Background(), "doc-1", 1, actorGM, "", DeclineMode("escalate"))
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteRequiresFullApproval(t *testing.T) {
	db := openTestDB(t)
	writer := &recordingStatusWriter{}
	engine := NewEngine(db, WithStatusWriter(writer))
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	_, err := engine.Complete(ctx, "doc-1", "user-admin")
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 2, actorCFO)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 3, actorCEO)
	require.NoError(t, err)

	result, err := engine.Complete(ctx, "doc-1", "user-admin")
	require.NoError(t, err)
	require.Equal(t, DocumentStatusCompleted, result.Status)
	require.Equal(t, DocumentStatusCompleted, writer.last())

	history, err := engine.History(ctx, "doc-1")
	require.NoError(t, err)
	require.Equal(t, HistoryCompleted, history[len(history)-1].Action)
}

func TestCanAct(t *testing.T) {
	engine := NewEngine(openTestDB(t))

	roleStep := &ApprovalStep{RoleID: "role-cfo"}
	require.True(t, engine.CanAct(roleStep, actorCFO))
	require.False(t, engine.CanAct(roleStep, actorGM))

	// A specific user narrows the role: even another holder of the same
	// role is refused, and the named user passes regardless of role.
	namedStep := &ApprovalStep{RoleID: "role-cfo", SpecificUserID: strPtr("user-cfo")}
	require.True(t, engine.CanAct(namedStep, actorCFO))
	require.False(t, engine.CanAct(namedStep, Actor{ID: "user-other-cfo", RoleID: "role-cfo"}))
	require.True(t, engine.CanAct(namedStep, Actor{ID: "user-cfo", RoleID: "role-changed"}))

	require.False(t, engine.CanAct(nil, actorCFO))
}

func TestLostDecisionRaceSurfacesAsTransitionError(t *testing.T) {
	db := openTestDB(t)
	engine := NewEngine(db)
	instantiateChain(t, db, "doc-1", threeStepInputs())
	ctx := context.Background()

	// Two reviewers race for step 1. The second request re-reads the
	// chain, sees the step is no longer current, and fails cleanly
	// instead of double-writing.
	_, err := engine.Approve(ctx, "doc-1", 1, actorGM)
	require.NoError(t, err)
	_, err = engine.Approve(ctx, "doc-1", 1, Actor{ID: "user-gm2", RoleID: "role-gm"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.True(t, IsConflict(ErrConcurrencyConflict))
	require.False(t, IsConflict(ErrInvalidTransition))
}

// chanNotifier delivers the engine's fire-and-forget notifications to the
// test goroutine.
type chanNotifier struct {
	ch chan *notification.Notification
}

func (n *chanNotifier) Send(ctx context.Context, msg *notification.Notification) error {
	n.ch <- msg
	return nil
}

func TestApproveFiresNotification(t *testing.T) {
	db := openTestDB(t)
	notifier := &chanNotifier{ch: make(chan *notification.Notification, 1)}
	engine := NewEngine(db, WithNotifier(notifier))
	instantiateChain(t, db, "doc-1", threeStepInputs())

	_, err := engine.Approve(context.Background(), "doc-1", 1, actorGM)
	require.NoError(t, err)

	msg := <-notifier.ch
	require.Equal(t, "doc-1", msg.Data["document_id"])
	require.Equal(t, "approved", msg.Data["event"])
}

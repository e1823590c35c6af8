package approval

// ProjectStatus derives a document's coarse status from the full step set.
// It is a pure function and must be recomputed, never cached: any declined
// step means rejected, any revision step means revision, a fully approved
// chain means approved, otherwise the chain is still pending. The
// "completed" status comes from the PR→PO conversion path, outside this
// projector.
func ProjectStatus(steps []ApprovalStep) DocumentStatus {
	if len(steps) == 0 {
		return DocumentStatusDraft
	}

	allApproved := true
	for _, step := range steps {
		switch step.Status {
		case StepStatusDeclined:
			return DocumentStatusRejected
		case StepStatusRevision:
			return DocumentStatusRevision
		case StepStatusApproved:
		default:
			allApproved = false
		}
	}

	if allApproved {
		return DocumentStatusApproved
	}
	return DocumentStatusPending
}

// CurrentStep returns the lowest-order step still awaiting action, or nil
// when the chain is closed: either every step is approved, or an earlier
// step is declined/revision and later steps can never activate. steps must
// be ordered by StepOrder ascending.
func CurrentStep(steps []ApprovalStep) *ApprovalStep {
	for i := range steps {
		if steps[i].Status.ClosesChain() {
			return nil
		}
		if steps[i].Status.IsActionable() {
			return &steps[i]
		}
	}
	return nil
}

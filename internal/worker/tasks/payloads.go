package tasks

// Task types.
const (
	TypeOvertimeScan    = "approval:overtime_scan"
	TypeOvertimeResolve = "approval:overtime_resolve"
)

// OvertimeScanPayload is empty: a scan always covers every document
// with an open approval chain.
type OvertimeScanPayload struct{}

// OvertimeResolvePayload targets a single step, used when an operator
// wants to force a check outside the scan schedule.
type OvertimeResolvePayload struct {
	StepID string `json:"step_id"`
}

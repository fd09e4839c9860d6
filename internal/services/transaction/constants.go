package transaction

import "iprofit/internal/models"

// Review actions
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionProcess  = "process"
	ActionComplete = "complete"
	ActionFail     = "fail"
)

// Metric outcomes
const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

type transition struct {
	from []string
	to   string
}

func (t transition) allows(status string) bool {
	for _, s := range t.from {
		if s == status {
			return true
		}
	}
	return false
}

var depositTransitions = map[string]transition{
	ActionApprove: {from: []string{models.TransactionStatusPending}, to: models.TransactionStatusApproved},
	ActionReject:  {from: []string{models.TransactionStatusPending}, to: models.TransactionStatusRejected},
}

var withdrawalTransitions = map[string]transition{
	ActionApprove: {from: []string{models.TransactionStatusPending}, to: models.TransactionStatusApproved},
	ActionReject:  {from: []string{models.TransactionStatusPending}, to: models.TransactionStatusRejected},
	ActionProcess: {from: []string{models.TransactionStatusApproved}, to: models.TransactionStatusProcessing},
	ActionComplete: {
		from: []string{models.TransactionStatusApproved, models.TransactionStatusProcessing},
		to:   models.TransactionStatusCompleted,
	},
	ActionFail: {
		from: []string{models.TransactionStatusApproved, models.TransactionStatusProcessing},
		to:   models.TransactionStatusFailed,
	},
}

package approvalworkflow

import (
	"fmt"
	"grc-backend/models"
	approvalapimodels "grc-backend/models/api/approval"
	dbmodels "grc-backend/models/db"
	"time"
)

const (
	msgFullyApproved = "Request fully approved - control status updated"
	msgEscalated     = "Request approved at level %d. Escalated to level %d."
	msgRejected      = "Request rejected"
)

// nextState computes the mutation for a pending request.
//
//	PENDING(L), reject            -> REJECTED
//	PENDING(L), approve, L < max  -> PENDING(L+1)
//	PENDING(L), approve, L == max -> APPROVED
func nextState(rec dbmodels.ApprovalRequest, userID string, decision approvalapimodels.Decision, now time.Time) (map[string]interface{}, approvalapimodels.DecisionResult) {
	level := rec.CurrentLevel
	result := approvalapimodels.DecisionResult{
		RequestID:    rec.ID,
		MaxLevels:    rec.MaxLevels,
		LevelDecided: level,
		CurrentLevel: level,
	}
	resolve := func(status models.ApprovalStatus) map[string]interface{} {
		return map[string]interface{}{
			"status":      status,
			"resolved_by": userID,
			"resolved_at": now,
			"comments":    decision.Comments,
		}
	}

	if decision.Decision == models.DecisionRejected {
		result.Status = models.ApprovalStatusRejected
		result.Message = msgRejected
		result.Comments = decision.Comments
		return resolve(models.ApprovalStatusRejected), result
	}
	if level >= rec.MaxLevels {
		result.Status = models.ApprovalStatusApproved
		result.Message = msgFullyApproved
		return resolve(models.ApprovalStatusApproved), result
	}
	result.Status = models.ApprovalStatusPending
	result.CurrentLevel = level + 1
	result.Message = fmt.Sprintf(msgEscalated, level, level+1)
	return map[string]interface{}{
		"current_level": level + 1,
	}, result
}

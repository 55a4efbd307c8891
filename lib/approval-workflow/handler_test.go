package approvalworkflow

import (
	"sync"
	"testing"
	"time"

	"grc-backend/models"
	approvalapimodels "grc-backend/models/api/approval"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	orgID      = "org-7"
	otherOrgID = "org-5"
)

var (
	levelOneApprover = approvalapimodels.Actor{UserID: "u-manager", Role: models.ComplianceManagerRole, OrgID: orgID}
	levelTwoApprover = approvalapimodels.Actor{UserID: "u-ciso", Role: models.CisoRole, OrgID: orgID}
)

func defaultPolicy() Policy {
	return Policy{
		DefaultMaxLevels: 2,
		LevelRoles:       []models.UserRole{models.ComplianceManagerRole, models.CisoRole},
	}
}

func TestSubmitDecision(t *testing.T) {
	t.Run(`two level approval`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)

		result, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{Comments: "looks good"})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusPending, result.Status)
		require.Equal(t, 2, result.CurrentLevel)
		require.Equal(t, 1, result.LevelDecided)
		require.Equal(t, "Request approved at level 1. Escalated to level 2.", result.Message)
		require.Len(t, env.controls.applied, 0)
		require.Len(t, env.audit.events, 0)
		require.Len(t, env.notifier.sent, 1)
		require.Equal(t, models.CisoRole, env.notifier.sent[0].Role)
		require.Equal(t, models.NotifyApprovalPending, env.notifier.sent[0].Code)

		result, err = env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, result.Status)
		require.Equal(t, 2, result.CurrentLevel)
		require.Equal(t, 2, result.MaxLevels)
		require.Equal(t, "Request fully approved - control status updated", result.Message)

		rec := env.request(id)
		require.Equal(t, models.ApprovalStatusApproved, rec.Status)
		require.NotNil(t, rec.ResolvedBy)
		require.Equal(t, levelTwoApprover.UserID, *rec.ResolvedBy)
		require.NotNil(t, rec.ResolvedAt)

		require.Len(t, env.controls.applied, 1)
		require.Equal(t, applyCall{OrgID: orgID, ControlID: "control-1", Status: models.ControlStatusImplemented}, env.controls.applied[0])
		require.Len(t, env.audit.events, 1)
		require.Equal(t, models.AuditApprovalDecision, env.audit.events[0].EventType)
		require.Equal(t, models.AuditResourceApproval, env.audit.events[0].ResourceType)
		require.Equal(t, id, env.audit.events[0].ResourceID)
		require.Equal(t, "approve", env.audit.events[0].Action)
		require.Equal(t, orgID, env.audit.events[0].OrgID)

		_, err = env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.True(t, errors.Is(err, models.ErrConflict))
		_, err = env.engine.Reject(levelTwoApprover, id, approvalapimodels.RejectData{Comments: "too late"})
		require.True(t, errors.Is(err, models.ErrConflict))
		require.Len(t, env.controls.applied, 1)
		require.Equal(t, 2, env.stepCount())
	})

	t.Run(`approvals below max keep request pending`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 5)
		for n := 1; n < 5; n++ {
			result, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{})
			require.Nil(t, err)
			require.Equal(t, models.ApprovalStatusPending, result.Status)
			require.Equal(t, 1+n, result.CurrentLevel)

			rec := env.request(id)
			require.Equal(t, models.ApprovalStatusPending, rec.Status)
			require.Equal(t, 1+n, rec.CurrentLevel)
			require.Nil(t, rec.ResolvedBy)
			require.Nil(t, rec.ResolvedAt)
		}
		result, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, result.Status)
		require.Equal(t, 5, result.CurrentLevel)
		require.Len(t, env.controls.applied, 1)
	})

	t.Run(`reject at first level`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 3)

		result, err := env.engine.Reject(levelOneApprover, id, approvalapimodels.RejectData{Comments: "insufficient evidence"})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusRejected, result.Status)
		require.Equal(t, 1, result.LevelDecided)
		require.Equal(t, "Request rejected", result.Message)

		history, err := env.engine.History(orgID, id)
		require.Nil(t, err)
		require.Len(t, history, 1)
		require.Equal(t, models.DecisionRejected, history[0].Decision)
		require.Equal(t, 1, history[0].Level)
		require.Equal(t, "insufficient evidence", history[0].Comments)

		rec := env.request(id)
		require.Equal(t, models.ApprovalStatusRejected, rec.Status)
		require.Equal(t, 1, rec.CurrentLevel)
		require.Equal(t, "insufficient evidence", rec.Comments)
		require.Len(t, env.controls.applied, 0)

		require.Len(t, env.audit.events, 1)
		require.Equal(t, "reject", env.audit.events[0].Action)
		require.Len(t, env.notifier.sent, 1)
		require.Equal(t, "requester", env.notifier.sent[0].UserID)
		require.Equal(t, models.NotifyApprovalRejected, env.notifier.sent[0].Code)

		_, err = env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.True(t, errors.Is(err, models.ErrConflict))
		require.Equal(t, "Request already processed", models.HumanMessage(err))
		require.Equal(t, 1, env.stepCount())
	})

	t.Run(`reject requires comments`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		before := env.request(id)

		for _, comments := range []string{"", "   ", "\n\t"} {
			_, err := env.engine.Reject(levelOneApprover, id, approvalapimodels.RejectData{Comments: comments})
			require.True(t, errors.Is(err, models.ErrInvalidArgument))
			require.Equal(t, "Rejection comments are required", models.HumanMessage(err))
		}
		require.Equal(t, before, env.request(id))
		require.Equal(t, 0, env.stepCount())
		require.Len(t, env.audit.events, 0)
	})

	t.Run(`unknown decision`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		_, err := env.engine.submit(levelOneApprover, id, approvalapimodels.Decision{Decision: "maybe"})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))
	})

	t.Run(`other organization gets not found`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		stranger := approvalapimodels.Actor{UserID: "u-other", Role: models.AdminRole, OrgID: otherOrgID}

		_, err := env.engine.Approve(stranger, id, approvalapimodels.ApproveData{})
		require.True(t, errors.Is(err, models.ErrNotFound))
		require.False(t, errors.Is(err, models.ErrForbidden))

		_, err = env.engine.History(otherOrgID, id)
		require.True(t, errors.Is(err, models.ErrNotFound))
		_, err = env.engine.GetByID(otherOrgID, id)
		require.True(t, errors.Is(err, models.ErrNotFound))

		_, err = env.engine.Approve(levelOneApprover, "missing", approvalapimodels.ApproveData{})
		require.True(t, errors.Is(err, models.ErrNotFound))
		require.Equal(t, "Approval request not found", models.HumanMessage(err))

		require.Equal(t, models.ApprovalStatusPending, env.request(id).Status)
		require.Equal(t, 0, env.stepCount())
	})

	t.Run(`expected level mismatch`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		level := 2
		_, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{Level: &level})
		require.True(t, errors.Is(err, models.ErrConflict))
		require.Equal(t, 1, env.request(id).CurrentLevel)

		level = 1
		result, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{Level: &level})
		require.Nil(t, err)
		require.Equal(t, 2, result.CurrentLevel)
	})

	t.Run(`side effect failures do not undo decision`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		env.controls.applyErr = errors.New("control store down")
		env.audit.err = errors.New("audit sink down")
		env.notifier.err = errors.New("smtp down")
		id := env.addRequest(orgID, 1)

		result, err := env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, result.Status)
		require.Equal(t, models.ApprovalStatusApproved, env.request(id).Status)
		require.Len(t, env.controls.applied, 1)
		require.Equal(t, 1, env.stepCount())
	})
}

func TestConcurrentDecisions(t *testing.T) {
	for _, second := range []models.Decision{models.DecisionApproved, models.DecisionRejected} {
		t.Run(`race approve vs `+string(second), func(t *testing.T) {
			env := newTestEnv(defaultPolicy())
			id := env.addRequest(orgID, 2)
			env.db.readBarrier = &sync.WaitGroup{}
			env.db.readBarrier.Add(2)

			decisions := []approvalapimodels.Decision{
				{Decision: models.DecisionApproved},
				{Decision: second, Comments: "not yet"},
			}
			errs := make([]error, len(decisions))
			wg := sync.WaitGroup{}
			for n, decision := range decisions {
				wg.Add(1)
				go func(n int, decision approvalapimodels.Decision) {
					defer wg.Done()
					_, errs[n] = env.engine.submit(levelOneApprover, id, decision)
				}(n, decision)
			}
			wg.Wait()
			env.db.readBarrier = nil

			wins, conflicts := 0, 0
			for _, err := range errs {
				if err == nil {
					wins++
					continue
				}
				require.True(t, errors.Is(err, models.ErrConflict))
				conflicts++
			}
			require.Equal(t, 1, wins)
			require.Equal(t, 1, conflicts)
			require.Equal(t, 1, env.stepCount())

			rec := env.request(id)
			history, err := env.engine.History(orgID, id)
			require.Nil(t, err)
			require.Len(t, history, 1)
			if history[0].Decision == models.DecisionApproved {
				require.Equal(t, models.ApprovalStatusPending, rec.Status)
				require.Equal(t, 2, rec.CurrentLevel)
			} else {
				require.Equal(t, models.ApprovalStatusRejected, rec.Status)
				require.Equal(t, 1, rec.CurrentLevel)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	t.Run(`ordered and stable`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 3)

		_, err := env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{Comments: "l1"})
		require.Nil(t, err)
		_, err = env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{Comments: "l2"})
		require.Nil(t, err)
		_, err = env.engine.Reject(levelTwoApprover, id, approvalapimodels.RejectData{Comments: "l3 says no"})
		require.Nil(t, err)

		history, err := env.engine.History(orgID, id)
		require.Nil(t, err)
		require.Len(t, history, 3)
		for n, step := range history {
			require.Equal(t, n+1, step.Level)
			require.Equal(t, id, step.RequestID)
		}
		require.Equal(t, models.ComplianceManagerRole, history[0].ApproverRole)
		require.Equal(t, models.CisoRole, history[1].ApproverRole)
		require.Equal(t, models.DecisionRejected, history[2].Decision)
		require.True(t, history[0].DecisionDate.Before(history[1].DecisionDate))

		again, err := env.engine.History(orgID, id)
		require.Nil(t, err)
		require.Equal(t, history, again)

		rec, steps, err := env.engine.GetWithHistory(orgID, id)
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusRejected, rec.Status)
		require.Len(t, steps, 3)
	})

	t.Run(`empty for fresh request`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		history, err := env.engine.History(orgID, id)
		require.Nil(t, err)
		require.Len(t, history, 0)
	})
}

func TestList(t *testing.T) {
	env := newTestEnv(defaultPolicy())
	first := env.addRequest(orgID, 1)
	second := env.addRequest(orgID, 2)
	env.addRequest(otherOrgID, 2)
	env.db.mu.Lock()
	rec := env.db.requests[second]
	rec.RequestedDate = rec.RequestedDate.Add(time.Hour)
	env.db.requests[second] = rec
	env.db.mu.Unlock()

	_, err := env.engine.Approve(levelOneApprover, first, approvalapimodels.ApproveData{})
	require.Nil(t, err)

	t.Run(`unfiltered newest first`, func(t *testing.T) {
		list, err := env.engine.List(orgID, "")
		require.Nil(t, err)
		require.Len(t, list, 2)
		require.Equal(t, second, list[0].ID)
		require.Equal(t, first, list[1].ID)
	})

	t.Run(`status filter`, func(t *testing.T) {
		list, err := env.engine.List(orgID, models.ApprovalStatusApproved)
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, first, list[0].ID)

		list, err = env.engine.List(orgID, models.ApprovalStatusPending)
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, second, list[0].ID)
	})

	t.Run(`unknown filter is ignored`, func(t *testing.T) {
		list, err := env.engine.List(orgID, "whatever")
		require.Nil(t, err)
		require.Len(t, list, 2)
	})
}

func TestCreate(t *testing.T) {
	requester := approvalapimodels.Actor{UserID: "u-req", Role: models.ComplianceManagerRole, OrgID: orgID}

	t.Run(`defaults and notifications`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		env.addControl(orgID, "control-1")

		view, err := env.engine.Create(requester, approvalapimodels.StatusChangeData{
			ControlID:      "control-1",
			ProposedStatus: models.ControlStatusImplemented,
		})
		require.Nil(t, err)
		require.NotEmpty(t, view.ID)
		require.Equal(t, models.ApprovalStatusPending, view.Status)
		require.Equal(t, 1, view.CurrentLevel)
		require.Equal(t, 2, view.MaxLevels)
		require.Equal(t, "BR-001", view.ControlCode)
		require.Equal(t, requester.UserID, view.RequestedBy)

		require.Len(t, env.notifier.sent, 1)
		require.Equal(t, models.ComplianceManagerRole, env.notifier.sent[0].Role)
		require.Len(t, env.audit.events, 1)
		require.Equal(t, models.AuditApprovalRequested, env.audit.events[0].EventType)

		_, err = env.engine.Create(requester, approvalapimodels.StatusChangeData{
			ControlID:      "control-1",
			ProposedStatus: models.ControlStatusPartial,
		})
		require.True(t, errors.Is(err, models.ErrConflict))
	})

	t.Run(`validation`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		env.addControl(orgID, "control-1")

		_, err := env.engine.Create(requester, approvalapimodels.StatusChangeData{ControlID: "control-1", ProposedStatus: "done"})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))

		_, err = env.engine.Create(requester, approvalapimodels.StatusChangeData{
			ControlID:      "control-1",
			ProposedStatus: models.ControlStatusPartial,
			MaxLevels:      approvalapimodels.MaxLevelsLimit + 1,
		})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))

		_, err = env.engine.Create(requester, approvalapimodels.StatusChangeData{ControlID: "missing", ProposedStatus: models.ControlStatusPartial})
		require.True(t, errors.Is(err, models.ErrNotFound))

		stranger := requester
		stranger.OrgID = otherOrgID
		_, err = env.engine.Create(stranger, approvalapimodels.StatusChangeData{ControlID: "control-1", ProposedStatus: models.ControlStatusPartial})
		require.True(t, errors.Is(err, models.ErrNotFound))

		rec := env.controls.controls["control-1"]
		rec.IsActive = false
		env.controls.controls["control-1"] = rec
		_, err = env.engine.Create(requester, approvalapimodels.StatusChangeData{ControlID: "control-1", ProposedStatus: models.ControlStatusPartial})
		require.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run(`concurrent creates leave one pending request`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		env.addControl(orgID, "control-1")
		env.db.pendingReadDelay = 5 * time.Millisecond

		const callers = 6
		errs := make([]error, callers)
		wg := sync.WaitGroup{}
		for n := 0; n < callers; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, errs[n] = env.engine.Create(requester, approvalapimodels.StatusChangeData{
					ControlID:      "control-1",
					ProposedStatus: models.ControlStatusImplemented,
				})
			}(n)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			require.True(t, errors.Is(err, models.ErrConflict))
		}
		require.Equal(t, 1, created)
		pending, err := env.engine.List(orgID, models.ApprovalStatusPending)
		require.Nil(t, err)
		require.Len(t, pending, 1)
	})

	t.Run(`control deactivated before the lock`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		env.addControl(orgID, "control-1")
		env.db.missingControls = map[string]bool{"control-1": true}

		_, err := env.engine.Create(requester, approvalapimodels.StatusChangeData{
			ControlID:      "control-1",
			ProposedStatus: models.ControlStatusImplemented,
		})
		require.True(t, errors.Is(err, models.ErrNotFound))
		list, err := env.engine.List(orgID, "")
		require.Nil(t, err)
		require.Len(t, list, 0)
		require.Len(t, env.notifier.sent, 0)
	})
}

func TestLevelRoles(t *testing.T) {
	t.Run(`approver role per level`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		require.Equal(t, models.ComplianceManagerRole, env.engine.ApproverRole(1))
		require.Equal(t, models.CisoRole, env.engine.ApproverRole(2))
		require.Equal(t, models.CisoRole, env.engine.ApproverRole(5))
		require.Equal(t, models.UserRole(""), env.engine.ApproverRole(0))

		empty := newTestEnv(Policy{})
		require.Equal(t, models.UserRole(""), empty.engine.ApproverRole(1))
	})

	t.Run(`advisory mode accepts any role`, func(t *testing.T) {
		env := newTestEnv(defaultPolicy())
		id := env.addRequest(orgID, 2)
		_, err := env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)
	})

	t.Run(`strict mode`, func(t *testing.T) {
		policy := defaultPolicy()
		policy.StrictLevelRoles = true
		env := newTestEnv(policy)
		id := env.addRequest(orgID, 2)

		_, err := env.engine.Approve(levelTwoApprover, id, approvalapimodels.ApproveData{})
		require.True(t, errors.Is(err, models.ErrForbidden))
		require.Equal(t, 0, env.stepCount())

		_, err = env.engine.Approve(levelOneApprover, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)

		admin := approvalapimodels.Actor{UserID: "u-admin", Role: models.AdminRole, OrgID: orgID}
		result, err := env.engine.Approve(admin, id, approvalapimodels.ApproveData{})
		require.Nil(t, err)
		require.Equal(t, models.ApprovalStatusApproved, result.Status)
	})
}

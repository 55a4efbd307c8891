package approvalworkflow

import (
	approvalrequeststore "grc-backend/lib/approval-request/store"
	workflowstepstore "grc-backend/lib/approval-request/workflow-step-store"
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// memDB in-memory record store shared by the request and step fakes
type memDB struct {
	mu       sync.Mutex
	requests map[string]dbmodels.ApprovalRequest
	steps    []dbmodels.WorkflowStep
	// readBarrier when set, GetByID blocks until every reader has loaded the record
	readBarrier *sync.WaitGroup
	// pendingReadDelay widens the window between the pending check and the insert
	pendingReadDelay time.Duration
	// missingControls controls LockControl reports as missing
	missingControls map[string]bool
}

func newMemDB() *memDB {
	return &memDB{
		requests: map[string]dbmodels.ApprovalRequest{},
	}
}

func (m *memDB) lock(locked bool) func() {
	if locked {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

type memRequestStore struct {
	db     *memDB
	locked bool
}

func (s memRequestStore) Create(rec dbmodels.ApprovalRequest) (string, error) {
	defer s.db.lock(s.locked)()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.db.requests[rec.ID] = rec
	return rec.ID, nil
}

func (s memRequestStore) GetByID(orgID, id string) (*dbmodels.ApprovalRequest, error) {
	unlock := s.db.lock(s.locked)
	rec, ok := s.db.requests[id]
	barrier := s.db.readBarrier
	unlock()
	if barrier != nil {
		barrier.Done()
		barrier.Wait()
	}
	if !ok || rec.OrgID != orgID {
		return nil, nil
	}
	return &rec, nil
}

func (s memRequestStore) GetPendingByControl(orgID, controlID string) (*dbmodels.ApprovalRequest, error) {
	unlock := s.db.lock(s.locked)
	var found *dbmodels.ApprovalRequest
	for _, rec := range s.db.requests {
		if rec.OrgID == orgID && rec.ControlID == controlID && rec.Status == models.ApprovalStatusPending {
			found = &rec
			break
		}
	}
	delay := s.db.pendingReadDelay
	unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return found, nil
}

// LockControl the transaction mutex already serializes writers
func (s memRequestStore) LockControl(orgID, controlID string) (bool, error) {
	defer s.db.lock(s.locked)()
	return !s.db.missingControls[controlID], nil
}

func (s memRequestStore) List(orgID string, status models.ApprovalStatus) ([]dbmodels.ApprovalRequest, error) {
	defer s.db.lock(s.locked)()
	list := []dbmodels.ApprovalRequest{}
	for _, rec := range s.db.requests {
		if rec.OrgID != orgID {
			continue
		}
		if status != "" && rec.Status != status {
			continue
		}
		list = append(list, rec)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].RequestedDate.After(list[j].RequestedDate)
	})
	return list, nil
}

func (s memRequestStore) ListOverdue(now time.Time) ([]dbmodels.ApprovalRequest, error) {
	defer s.db.lock(s.locked)()
	list := []dbmodels.ApprovalRequest{}
	for _, rec := range s.db.requests {
		if rec.Status == models.ApprovalStatusPending && rec.DueDate != nil && rec.DueDate.Before(now) {
			list = append(list, rec)
		}
	}
	return list, nil
}

func (s memRequestStore) Transition(orgID, id string, fromLevel int, updMap map[string]interface{}) (bool, error) {
	defer s.db.lock(s.locked)()
	rec, ok := s.db.requests[id]
	if !ok || rec.OrgID != orgID || rec.Status != models.ApprovalStatusPending || rec.CurrentLevel != fromLevel {
		return false, nil
	}
	for key, value := range updMap {
		switch key {
		case "status":
			rec.Status = value.(models.ApprovalStatus)
		case "current_level":
			rec.CurrentLevel = value.(int)
		case "resolved_by":
			userID := value.(string)
			rec.ResolvedBy = &userID
		case "resolved_at":
			resolvedAt := value.(time.Time)
			rec.ResolvedAt = &resolvedAt
		case "comments":
			rec.Comments = value.(string)
		default:
			return false, errors.Errorf("unexpected column %v", key)
		}
	}
	s.db.requests[id] = rec
	return true, nil
}

type memStepStore struct {
	db     *memDB
	locked bool
}

func (s memStepStore) Create(rec dbmodels.WorkflowStep) (string, error) {
	defer s.db.lock(s.locked)()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.db.steps = append(s.db.steps, rec)
	return rec.ID, nil
}

func (s memStepStore) List(requestID string) ([]dbmodels.WorkflowStep, error) {
	defer s.db.lock(s.locked)()
	list := []dbmodels.WorkflowStep{}
	for _, rec := range s.db.steps {
		if rec.ApprovalRequestID == requestID {
			list = append(list, rec)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Level != list[j].Level {
			return list[i].Level < list[j].Level
		}
		return list[i].DecisionDate.Before(list[j].DecisionDate)
	})
	return list, nil
}

// memTx serializes transactions and restores the snapshot when fn fails
type memTx struct {
	db *memDB
}

func (t memTx) InTx(fn func(requests approvalrequeststore.Provider, steps workflowstepstore.Provider) error) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	requests := make(map[string]dbmodels.ApprovalRequest, len(t.db.requests))
	for k, v := range t.db.requests {
		requests[k] = v
	}
	steps := append([]dbmodels.WorkflowStep(nil), t.db.steps...)

	err := fn(memRequestStore{db: t.db, locked: true}, memStepStore{db: t.db, locked: true})
	if err != nil {
		t.db.requests = requests
		t.db.steps = steps
	}
	return err
}

type applyCall struct {
	OrgID     string
	ControlID string
	Status    models.ControlStatus
}

type fakeControls struct {
	mu       sync.Mutex
	controls map[string]dbmodels.Control
	applied  []applyCall
	applyErr error
}

func (f *fakeControls) GetRec(orgID, id string) (*dbmodels.Control, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.controls[id]
	if !ok || rec.OrgID != orgID {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeControls) ApplyStatus(orgID, id string, status models.ControlStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, applyCall{OrgID: orgID, ControlID: id, Status: status})
	return f.applyErr
}

type fakeAudit struct {
	mu     sync.Mutex
	events []dbmodels.AuditEvent
	err    error
}

func (f *fakeAudit) Record(event dbmodels.AuditEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

type sentNotification struct {
	OrgID  string
	Role   models.UserRole
	UserID string
	Code   models.NotificationCode
	Msg    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (f *fakeNotifier) NotifyRole(orgID string, role models.UserRole, code models.NotificationCode, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{OrgID: orgID, Role: role, Code: code, Msg: msg})
	return f.err
}

func (f *fakeNotifier) NotifyUser(orgID, userID string, code models.NotificationCode, msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{OrgID: orgID, UserID: userID, Code: code, Msg: msg})
	return f.err
}

type testEnv struct {
	db       *memDB
	controls *fakeControls
	audit    *fakeAudit
	notifier *fakeNotifier
	engine   impl
}

func newTestEnv(policy Policy) *testEnv {
	env := &testEnv{
		db: newMemDB(),
		controls: &fakeControls{
			controls: map[string]dbmodels.Control{},
		},
		audit:    &fakeAudit{},
		notifier: &fakeNotifier{},
	}
	engine := NewInstance(
		memRequestStore{db: env.db},
		memStepStore{db: env.db},
		memTx{db: env.db},
		env.controls,
		env.audit,
		env.notifier,
		policy,
	).(impl)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	engine.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}
	env.engine = engine
	return env
}

func (e *testEnv) addControl(orgID, id string) {
	rec := dbmodels.Control{
		InternalCode:         "BR-001",
		Title:                "Asset inventory",
		ImplementationStatus: models.ControlStatusNotImplemented,
		IsActive:             true,
	}
	rec.ID = id
	rec.OrgID = orgID
	e.controls.controls[id] = rec
}

func (e *testEnv) addRequest(orgID string, maxLevels int) string {
	rec := dbmodels.ApprovalRequest{
		ControlID:      "control-1",
		ProposedStatus: models.ControlStatusImplemented,
		CurrentLevel:   1,
		MaxLevels:      maxLevels,
		RequestedBy:    "requester",
		RequestedDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Status:         models.ApprovalStatusPending,
	}
	rec.OrgID = orgID
	id, _ := memRequestStore{db: e.db}.Create(rec)
	return id
}

func (e *testEnv) request(id string) dbmodels.ApprovalRequest {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return e.db.requests[id]
}

func (e *testEnv) stepCount() int {
	e.db.mu.Lock()
	defer e.db.mu.Unlock()
	return len(e.db.steps)
}

package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgstruct/modules/org/domain/changerequest"
	"github.com/iota-uz/orgstruct/modules/org/domain/department"
	"github.com/iota-uz/orgstruct/modules/org/domain/employee"
	"github.com/iota-uz/orgstruct/modules/org/domain/notification"
	"github.com/iota-uz/orgstruct/modules/org/domain/position"
	"github.com/iota-uz/orgstruct/pkg/composables"
	"github.com/iota-uz/orgstruct/pkg/eventbus"
)

// stubTx satisfies pgx.Tx so InTx joins it instead of reaching for a pool.
// The in-memory fakes never touch the connection, so the embedded interface
// methods are never called.
type stubTx struct{ pgx.Tx }

func testCtx() context.Context {
	return composables.WithTx(context.Background(), stubTx{})
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testBus() eventbus.EventBus {
	return eventbus.NewEventPublisher(testLogger())
}

func normCode(v string) string  { return strings.ToUpper(strings.TrimSpace(v)) }
func normTitle(v string) string { return strings.ToLower(strings.TrimSpace(v)) }

// memDepartments mirrors the Postgres repository, including the unique code
// constraint.
type memDepartments struct {
	mu    sync.Mutex
	items map[uuid.UUID]department.Department
}

func newMemDepartments() *memDepartments {
	return &memDepartments{items: make(map[uuid.UUID]department.Department)}
}

func (m *memDepartments) GetByID(_ context.Context, id uuid.UUID) (department.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.items[id]
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	return d, nil
}

func (m *memDepartments) GetByCode(_ context.Context, code string, excludeID uuid.UUID) (department.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := normCode(code)
	for _, d := range m.items {
		if d.Code() == want && d.ID() != excludeID {
			return d, nil
		}
	}
	return department.Department{}, department.ErrNotFound
}

func (m *memDepartments) GetAll(_ context.Context) ([]department.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]department.Department, 0, len(m.items))
	for _, d := range m.items {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDepartments) GetPaginated(ctx context.Context, params *department.FindParams) ([]department.Department, int64, error) {
	all, err := m.GetAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	if params != nil && params.Q != "" {
		q := strings.ToLower(params.Q)
		filtered := all[:0]
		for _, d := range all {
			if strings.Contains(strings.ToLower(d.Name()), q) || strings.Contains(strings.ToLower(d.Code()), q) {
				filtered = append(filtered, d)
			}
		}
		all = filtered
	}
	return all, int64(len(all)), nil
}

func (m *memDepartments) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memDepartments) Create(_ context.Context, d department.Department) (department.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Code() == d.Code() {
			return department.Department{}, department.ErrDuplicateCode
		}
	}
	now := time.Now().UTC()
	created := department.Hydrate(uuid.New(), d.Name(), d.Code(), d.Active(), d.ParentID(), now, now)
	m.items[created.ID()] = created
	return created, nil
}

func (m *memDepartments) Update(_ context.Context, d department.Department) (department.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[d.ID()]; !ok {
		return department.Department{}, department.ErrNotFound
	}
	for _, existing := range m.items {
		if existing.ID() != d.ID() && existing.Code() == d.Code() {
			return department.Department{}, department.ErrDuplicateCode
		}
	}
	updated := department.Hydrate(d.ID(), d.Name(), d.Code(), d.Active(), d.ParentID(), d.CreatedAt(), time.Now().UTC())
	m.items[updated.ID()] = updated
	return updated, nil
}

type memPositions struct {
	mu    sync.Mutex
	items map[uuid.UUID]position.Position
}

func newMemPositions() *memPositions {
	return &memPositions{items: make(map[uuid.UUID]position.Position)}
}

func (m *memPositions) GetByID(_ context.Context, id uuid.UUID) (position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return position.Position{}, position.ErrNotFound
	}
	return p, nil
}

func (m *memPositions) GetByCode(_ context.Context, code string, excludeID uuid.UUID) (position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := normCode(code)
	for _, p := range m.items {
		if p.Code() == want && p.ID() != excludeID {
			return p, nil
		}
	}
	return position.Position{}, position.ErrNotFound
}

func (m *memPositions) GetByTitleInDepartment(_ context.Context, title string, departmentID uuid.UUID, excludeID uuid.UUID) (position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := normTitle(title)
	for _, p := range m.items {
		if normTitle(p.Title()) == want && p.DepartmentID() == departmentID && p.ID() != excludeID {
			return p, nil
		}
	}
	return position.Position{}, position.ErrNotFound
}

func (m *memPositions) GetByDepartment(_ context.Context, departmentID uuid.UUID) ([]position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []position.Position
	for _, p := range m.items {
		if p.DepartmentID() == departmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPositions) GetAll(_ context.Context) ([]position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]position.Position, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPositions) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memPositions) Create(_ context.Context, p position.Position) (position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Code() == p.Code() {
			return position.Position{}, position.ErrDuplicateCode
		}
		if existing.DepartmentID() == p.DepartmentID() && normTitle(existing.Title()) == normTitle(p.Title()) {
			return position.Position{}, position.ErrDuplicateTitle
		}
	}
	now := time.Now().UTC()
	created := position.Hydrate(uuid.New(), p.Title(), p.Code(), p.DepartmentID(), p.ReportsToID(), p.PayGradeID(), p.Active(), now, now)
	m.items[created.ID()] = created
	return created, nil
}

func (m *memPositions) Update(_ context.Context, p position.Position) (position.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID()]; !ok {
		return position.Position{}, position.ErrNotFound
	}
	for _, existing := range m.items {
		if existing.ID() == p.ID() {
			continue
		}
		if existing.Code() == p.Code() {
			return position.Position{}, position.ErrDuplicateCode
		}
		if existing.DepartmentID() == p.DepartmentID() && normTitle(existing.Title()) == normTitle(p.Title()) {
			return position.Position{}, position.ErrDuplicateTitle
		}
	}
	updated := position.Hydrate(p.ID(), p.Title(), p.Code(), p.DepartmentID(), p.ReportsToID(), p.PayGradeID(), p.Active(), p.CreatedAt(), time.Now().UTC())
	m.items[updated.ID()] = updated
	return updated, nil
}

// seedPosition inserts a hydrated position directly, bypassing constraints,
// for arranging reporting chains.
func (m *memPositions) seed(p position.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[p.ID()] = p
}

type memEmployees struct {
	mu    sync.Mutex
	items map[uuid.UUID]employee.Employee
}

func newMemEmployees() *memEmployees {
	return &memEmployees{items: make(map[uuid.UUID]employee.Employee)}
}

func (m *memEmployees) add(name string, role employee.Role) employee.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	e := employee.Hydrate(uuid.New(), name, role, true, now, now)
	m.items[e.ID()] = e
	return e
}

func (m *memEmployees) GetByID(_ context.Context, id uuid.UUID) (employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[id]
	if !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	return e, nil
}

func (m *memEmployees) GetByRoles(_ context.Context, roles ...employee.Role) ([]employee.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []employee.Employee
	for _, e := range m.items {
		for _, role := range roles {
			if e.Role() == role {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

type memRequests struct {
	mu    sync.Mutex
	items map[uuid.UUID]*changerequest.ChangeRequest

	// existsAnswers, when non-empty, overrides ExistsByRequestNumber one
	// answer per call, for driving number collisions.
	existsAnswers []bool
	createErr     error
	creates       int
}

func newMemRequests() *memRequests {
	return &memRequests{items: make(map[uuid.UUID]*changerequest.ChangeRequest)}
}

func (m *memRequests) Create(_ context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, existing := range m.items {
		if existing.RequestNumber == cr.RequestNumber {
			return nil, changerequest.ErrDuplicateNumber
		}
	}
	stored := *cr
	stored.ID = uuid.New()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRequests) Update(_ context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[cr.ID]; !ok {
		return nil, changerequest.ErrNotFound
	}
	stored := *cr
	stored.UpdatedAt = time.Now().UTC()
	m.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memRequests) GetByID(_ context.Context, id uuid.UUID) (*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cr, ok := m.items[id]
	if !ok {
		return nil, changerequest.ErrNotFound
	}
	out := *cr
	return &out, nil
}

func (m *memRequests) ExistsByRequestNumber(_ context.Context, requestNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.existsAnswers) > 0 {
		answer := m.existsAnswers[0]
		m.existsAnswers = m.existsAnswers[1:]
		return answer, nil
	}
	for _, cr := range m.items {
		if cr.RequestNumber == requestNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRequests) GetByRequester(_ context.Context, employeeID uuid.UUID) ([]*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*changerequest.ChangeRequest
	for _, cr := range m.items {
		if cr.RequesterID == employeeID {
			c := *cr
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memRequests) GetPending(_ context.Context) ([]*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*changerequest.ChangeRequest
	for _, cr := range m.items {
		if cr.Status == changerequest.StatusSubmitted || cr.Status == changerequest.StatusUnderReview {
			c := *cr
			out = append(out, &c)
		}
	}
	sortByEffectiveTimeDesc(out)
	return out, nil
}

func (m *memRequests) GetAll(_ context.Context) ([]*changerequest.ChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*changerequest.ChangeRequest, 0, len(m.items))
	for _, cr := range m.items {
		c := *cr
		out = append(out, &c)
	}
	return out, nil
}

func sortByEffectiveTimeDesc(requests []*changerequest.ChangeRequest) {
	effective := func(cr *changerequest.ChangeRequest) time.Time {
		if cr.SubmittedAt != nil {
			return *cr.SubmittedAt
		}
		return cr.CreatedAt
	}
	for i := 1; i < len(requests); i++ {
		for j := i; j > 0 && effective(requests[j]).After(effective(requests[j-1])); j-- {
			requests[j], requests[j-1] = requests[j-1], requests[j]
		}
	}
}

type memSink struct {
	mu       sync.Mutex
	recorded []notification.Notification
	failErr  error
}

func (m *memSink) Record(_ context.Context, n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.recorded = append(m.recorded, n)
	return nil
}

func (m *memSink) all() []notification.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.Notification, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// orgFixture wires an OrgService over in-memory stores.
type orgFixture struct {
	departments *memDepartments
	positions   *memPositions
	validator   *IntegrityValidator
	service     *OrgService
}

func newOrgFixture() *orgFixture {
	departments := newMemDepartments()
	positions := newMemPositions()
	validator := NewIntegrityValidator(departments, positions)
	return &orgFixture{
		departments: departments,
		positions:   positions,
		validator:   validator,
		service:     NewOrgService(departments, positions, validator, testBus()),
	}
}

// workflowFixture wires the full change request stack.
type workflowFixture struct {
	*orgFixture
	employees *memEmployees
	requests  *memRequests
	sink      *memSink
	numbers   *RequestNumberGenerator
	service   *ChangeRequestService
}

func newWorkflowFixture() *workflowFixture {
	org := newOrgFixture()
	employees := newMemEmployees()
	requests := newMemRequests()
	sink := &memSink{}
	numbers := NewRequestNumberGenerator("CR")
	return &workflowFixture{
		orgFixture: org,
		employees:  employees,
		requests:   requests,
		sink:       sink,
		numbers:    numbers,
		service: NewChangeRequestService(
			requests, employees, org.departments, org.positions,
			sink, numbers, org.service, testBus(), testLogger(),
		),
	}
}

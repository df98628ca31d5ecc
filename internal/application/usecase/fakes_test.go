package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
)

// ─── almacén en memoria ───────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type memStore struct {
	nextID        int64
	customers     map[int64]*entity.Customer
	opportunities map[int64]*entity.Opportunity
	activities    map[int64]*entity.Activity
	interactions  map[int64]*entity.Interaction
	users         map[int64]*entity.User
}

func newMemStore() *memStore {
	return &memStore{
		customers:     map[int64]*entity.Customer{},
		opportunities: map[int64]*entity.Opportunity{},
		activities:    map[int64]*entity.Activity{},
		interactions:  map[int64]*entity.Interaction{},
		users:         map[int64]*entity.User{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addCustomer(name string) *entity.Customer {
	c := &entity.Customer{ID: s.id(), Name: name, Status: entity.CustomerActive, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.customers[c.ID] = c
	return c
}

func (s *memStore) addOpportunity(customerID int64, title string) *entity.Opportunity {
	o := &entity.Opportunity{ID: s.id(), Title: title, Stage: entity.StageLead, CustomerID: customerID, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.opportunities[o.ID] = o
	return o
}

func (s *memStore) addActivity(customerID int64, status string) *entity.Activity {
	a := &entity.Activity{ID: s.id(), Title: "Llamar", Type: entity.ActivityCall, Status: status,
		Priority: entity.PriorityMedium, CustomerID: customerID, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.activities[a.ID] = a
	return a
}

func (s *memStore) addInteraction(customerID int64) *entity.Interaction {
	i := &entity.Interaction{ID: s.id(), Type: entity.InteractionPhone, Direction: entity.DirectionInbound,
		Description: "Consulta", Date: fixedNow, CustomerID: customerID, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	s.interactions[i.ID] = i
	return i
}

func (s *memStore) addUser(role string, active bool) *entity.User {
	u := &entity.User{ID: s.id(), Email: "u@crm.local", Name: "Usuario", Role: role, IsActive: active, CreatedAt: fixedNow}
	s.users[u.ID] = u
	return u
}

func page[T any](list []T, p repository.PageParams) []T {
	start := p.Offset()
	if start >= len(list) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// ─── customers ────────────────────────────────────────────────────────────────

type memCustomers struct {
	s          *memStore
	lastFilter repository.CustomerFilter
}

var _ repository.CustomerRepository = (*memCustomers)(nil)

func (r *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	c.ID = r.s.id()
	c.CreatedAt, c.UpdatedAt = fixedNow, fixedNow
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *memCustomers) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memCustomers) GetDetail(ctx context.Context, id int64) (*entity.Customer, error) {
	c, _ := r.GetByID(ctx, id)
	if c == nil {
		return nil, nil
	}
	c.Opportunities = []*entity.Opportunity{}
	for _, o := range r.s.opportunities {
		if o.CustomerID == id {
			c.Opportunities = append(c.Opportunities, o)
		}
	}
	c.Interactions = []*entity.Interaction{}
	for _, i := range r.s.interactions {
		if i.CustomerID == id {
			c.Interactions = append(c.Interactions, i)
		}
	}
	return c, nil
}

func (r *memCustomers) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.s.customers[id]
	return ok, nil
}

func (r *memCustomers) List(_ context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	r.lastFilter = f
	var out []*entity.Customer
	for id := int64(1); id <= r.s.nextID; id++ {
		c, ok := r.s.customers[id]
		if !ok {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	return page(out, f.PageParams), len(out), nil
}

func (r *memCustomers) Update(_ context.Context, c *entity.Customer) error {
	if _, ok := r.s.customers[c.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	c.UpdatedAt = fixedNow
	cp := *c
	r.s.customers[c.ID] = &cp
	return nil
}

func (r *memCustomers) LockByID(ctx context.Context, id int64) (*entity.Customer, error) {
	return r.GetByID(ctx, id)
}

func (r *memCustomers) CountDependents(_ context.Context, id int64) (repository.DependentCounts, error) {
	var d repository.DependentCounts
	for _, o := range r.s.opportunities {
		if o.CustomerID == id {
			d.Opportunities++
		}
	}
	for _, a := range r.s.activities {
		if a.CustomerID == id {
			d.Activities++
		}
	}
	for _, i := range r.s.interactions {
		if i.CustomerID == id {
			d.Interactions++
		}
	}
	return d, nil
}

func (r *memCustomers) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.s.customers, id)
	return nil
}

func (r *memCustomers) StatusCounts(_ context.Context) (repository.CustomerStatusCounts, error) {
	var s repository.CustomerStatusCounts
	for _, c := range r.s.customers {
		s.Total++
		switch c.Status {
		case entity.CustomerActive:
			s.Active++
		case entity.CustomerProspect:
			s.Prospect++
		case entity.CustomerInactive:
			s.Inactive++
		case entity.CustomerLost:
			s.Lost++
		}
	}
	return s, nil
}

func (r *memCustomers) Summary(ctx context.Context, id int64) (*repository.CustomerSummary, error) {
	c, _ := r.GetByID(ctx, id)
	if c == nil {
		return nil, nil
	}
	s := &repository.CustomerSummary{Customer: c, PipelineValue: decimal.Zero, WonValue: decimal.Zero}
	for _, o := range r.s.opportunities {
		if o.CustomerID != id {
			continue
		}
		s.Opportunities++
		if o.IsActive() {
			s.OpenOpportunities++
			s.PipelineValue = s.PipelineValue.Add(o.ValueOrZero())
		}
		if o.IsWon() {
			s.WonValue = s.WonValue.Add(o.ValueOrZero())
		}
	}
	return s, nil
}

// ─── opportunities ────────────────────────────────────────────────────────────

type memOpportunities struct {
	s *memStore
}

var _ repository.OpportunityRepository = (*memOpportunities)(nil)

func (r *memOpportunities) Create(_ context.Context, o *entity.Opportunity) error {
	o.ID = r.s.id()
	o.CreatedAt, o.UpdatedAt = fixedNow, fixedNow
	cp := *o
	r.s.opportunities[o.ID] = &cp
	return nil
}

func (r *memOpportunities) GetByID(_ context.Context, id int64) (*entity.Opportunity, error) {
	o, ok := r.s.opportunities[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	if c, ok := r.s.customers[o.CustomerID]; ok {
		cp.Customer = &entity.CustomerRef{ID: c.ID, Name: c.Name, Company: c.Company}
	}
	return &cp, nil
}

func (r *memOpportunities) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.s.opportunities[id]
	return ok, nil
}

func (r *memOpportunities) List(_ context.Context, f repository.OpportunityFilter) ([]*entity.Opportunity, int, error) {
	var out []*entity.Opportunity
	for id := int64(1); id <= r.s.nextID; id++ {
		o, ok := r.s.opportunities[id]
		if !ok || (f.CustomerID != nil && o.CustomerID != *f.CustomerID) || (f.Stage != "" && o.Stage != f.Stage) {
			continue
		}
		out = append(out, o)
	}
	return page(out, f.PageParams), len(out), nil
}

func (r *memOpportunities) ListByStage(ctx context.Context, stage string) ([]*entity.Opportunity, error) {
	list, _, err := r.List(ctx, repository.OpportunityFilter{Stage: stage, PageParams: repository.PageParams{Page: 1, Limit: 1000}})
	return list, err
}

func (r *memOpportunities) Update(_ context.Context, o *entity.Opportunity) error {
	if _, ok := r.s.opportunities[o.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *o
	r.s.opportunities[o.ID] = &cp
	return nil
}

func (r *memOpportunities) LockByID(ctx context.Context, id int64) (*entity.Opportunity, error) {
	return r.GetByID(ctx, id)
}

func (r *memOpportunities) CountActivities(_ context.Context, id int64) (int, error) {
	n := 0
	for _, a := range r.s.activities {
		if a.OpportunityID != nil && *a.OpportunityID == id {
			n++
		}
	}
	return n, nil
}

func (r *memOpportunities) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.opportunities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.opportunities, id)
	return nil
}

// ─── activities ───────────────────────────────────────────────────────────────

type memActivities struct {
	s          *memStore
	lastFilter repository.ActivityFilter
}

var _ repository.ActivityRepository = (*memActivities)(nil)

func (r *memActivities) Create(_ context.Context, a *entity.Activity) error {
	a.ID = r.s.id()
	a.CreatedAt, a.UpdatedAt = fixedNow, fixedNow
	cp := *a
	r.s.activities[a.ID] = &cp
	return nil
}

func (r *memActivities) GetByID(_ context.Context, id int64) (*entity.Activity, error) {
	a, ok := r.s.activities[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memActivities) List(_ context.Context, f repository.ActivityFilter) ([]*entity.Activity, int, error) {
	r.lastFilter = f
	var out []*entity.Activity
	for id := int64(1); id <= r.s.nextID; id++ {
		a, ok := r.s.activities[id]
		if !ok {
			continue
		}
		if f.AssignedToID != nil && (a.AssignedToID == nil || *a.AssignedToID != *f.AssignedToID) {
			continue
		}
		if f.OverdueAt != nil && !a.IsOverdue(*f.OverdueAt) {
			continue
		}
		out = append(out, a)
	}
	return page(out, f.PageParams), len(out), nil
}

func (r *memActivities) Update(_ context.Context, a *entity.Activity) error {
	if _, ok := r.s.activities[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	r.s.activities[a.ID] = &cp
	return nil
}

func (r *memActivities) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.s.activities[id]; !ok {
		return false, nil
	}
	delete(r.s.activities, id)
	return true, nil
}

// ─── interactions ─────────────────────────────────────────────────────────────

type memInteractions struct {
	s          *memStore
	lastFilter repository.InteractionFilter
	stats      repository.InteractionStats
	statsSince time.Time
}

var _ repository.InteractionRepository = (*memInteractions)(nil)

func (r *memInteractions) Create(_ context.Context, i *entity.Interaction) error {
	i.ID = r.s.id()
	i.CreatedAt, i.UpdatedAt = fixedNow, fixedNow
	cp := *i
	r.s.interactions[i.ID] = &cp
	return nil
}

func (r *memInteractions) GetByID(_ context.Context, id int64) (*entity.Interaction, error) {
	i, ok := r.s.interactions[id]
	if !ok {
		return nil, nil
	}
	cp := *i
	return &cp, nil
}

func (r *memInteractions) List(_ context.Context, f repository.InteractionFilter) ([]*entity.Interaction, int, error) {
	r.lastFilter = f
	var out []*entity.Interaction
	for id := int64(1); id <= r.s.nextID; id++ {
		if i, ok := r.s.interactions[id]; ok {
			out = append(out, i)
		}
	}
	return page(out, f.PageParams), len(out), nil
}

func (r *memInteractions) Update(_ context.Context, i *entity.Interaction) error {
	if _, ok := r.s.interactions[i.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *i
	r.s.interactions[i.ID] = &cp
	return nil
}

func (r *memInteractions) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.s.interactions[id]; !ok {
		return false, nil
	}
	delete(r.s.interactions, id)
	return true, nil
}

func (r *memInteractions) Stats(_ context.Context, since time.Time) (repository.InteractionStats, error) {
	r.statsSince = since
	return r.stats, nil
}

// ─── users ────────────────────────────────────────────────────────────────────

type memUsers struct {
	s *memStore
}

var _ repository.UserRepository = (*memUsers)(nil)

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	u.ID = r.s.id()
	u.CreatedAt, u.UpdatedAt = fixedNow, fixedNow
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUsers) Update(_ context.Context, u *entity.User) error {
	cp := *u
	r.s.users[u.ID] = &cp
	return nil
}

func (r *memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.users[id].PasswordHash = hash
	return nil
}

func (r *memUsers) RecordLogin(_ context.Context, id int64, at time.Time, ip string) error {
	r.s.users[id].RecordLogin(ip, at)
	return nil
}

func (r *memUsers) List(_ context.Context, p repository.PageParams) ([]*entity.User, int, error) {
	var out []*entity.User
	for id := int64(1); id <= r.s.nextID; id++ {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return page(out, p), len(out), nil
}

// ─── transacciones ────────────────────────────────────────────────────────────

type memTx struct {
	s    *memStore
	runs int
}

func (t *memTx) Run(_ context.Context, fn func(repository.CustomerRepository, repository.OpportunityRepository) error) error {
	t.runs++
	return fn(&memCustomers{s: t.s}, &memOpportunities{s: t.s})
}

// fixture agrupa el almacén y los repositorios.
type fixture struct {
	s             *memStore
	customers     *memCustomers
	opportunities *memOpportunities
	activities    *memActivities
	interactions  *memInteractions
	users         *memUsers
	tx            *memTx
}

func newFixture() *fixture {
	s := newMemStore()
	return &fixture{
		s:             s,
		customers:     &memCustomers{s: s},
		opportunities: &memOpportunities{s: s},
		activities:    &memActivities{s: s},
		interactions:  &memInteractions{s: s},
		users:         &memUsers{s: s},
		tx:            &memTx{s: s},
	}
}

func ptr[T any](v T) *T { return &v }

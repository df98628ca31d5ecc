package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
	"github.com/jhoicas/crm-api/internal/domain/entity"
	"github.com/jhoicas/crm-api/internal/domain/repository"
	apphttp "github.com/jhoicas/crm-api/internal/interfaces/http"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type memCustomers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*entity.Customer
	deps   map[int64]repository.DependentCounts
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: map[int64]*entity.Customer{}, deps: map[int64]repository.DependentCounts{}}
}

func (m *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCustomers) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCustomers) GetDetail(ctx context.Context, id int64) (*entity.Customer, error) {
	return m.GetByID(ctx, id)
}

func (m *memCustomers) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok, nil
}

func (m *memCustomers) List(_ context.Context, _ repository.CustomerFilter) ([]*entity.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Customer, 0, len(m.rows))
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (m *memCustomers) Update(_ context.Context, c *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCustomers) LockByID(ctx context.Context, id int64) (*entity.Customer, error) {
	return m.GetByID(ctx, id)
}

func (m *memCustomers) CountDependents(_ context.Context, id int64) (repository.DependentCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deps[id], nil
}

func (m *memCustomers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCustomers) StatusCounts(_ context.Context) (repository.CustomerStatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s repository.CustomerStatusCounts
	for _, c := range m.rows {
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

func (m *memCustomers) Summary(ctx context.Context, id int64) (*repository.CustomerSummary, error) {
	c, _ := m.GetByID(ctx, id)
	if c == nil {
		return nil, nil
	}
	return &repository.CustomerSummary{Customer: c}, nil
}

type memTx struct{ customers repository.CustomerRepository }

func (tx memTx) Run(_ context.Context, fn func(repository.CustomerRepository, repository.OpportunityRepository) error) error {
	return fn(tx.customers, nil)
}

type memUsers struct{ users map[int64]*entity.User }

func (m memUsers) Create(context.Context, *entity.User) error { return nil }
func (m memUsers) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return m.users[id], nil
}
func (m memUsers) GetByEmail(context.Context, string) (*entity.User, error)    { return nil, nil }
func (m memUsers) Update(context.Context, *entity.User) error                  { return nil }
func (m memUsers) UpdatePassword(context.Context, int64, string) error         { return nil }
func (m memUsers) RecordLogin(context.Context, int64, time.Time, string) error { return nil }
func (m memUsers) List(_ context.Context, _ repository.PageParams) ([]*entity.User, int, error) {
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

// ── app de prueba ─────────────────────────────────────────────────────────────

func newRouterApp(t *testing.T) (*fiber.App, *memCustomers) {
	t.Helper()
	customers := newMemCustomers()
	users := memUsers{users: map[int64]*entity.User{
		1: {ID: 1, Email: "admin@crm.test", Role: entity.RoleAdmin, IsActive: true},
		2: {ID: 2, Email: "ventas@crm.test", Role: entity.RoleSalesperson, IsActive: true},
	}}

	app := apphttp.NewApp(apphttp.AppConfig{Name: "crm-test"})
	apphttp.Router(app, apphttp.RouterDeps{
		UserUC:     usecase.NewUserUseCase(users),
		CustomerUC: usecase.NewCustomerUseCase(customers, memTx{customers: customers}, nil),
		JWTSecret:  testJWTSecret,
		JWTIssuer:  testIssuer,
	})
	return app, customers
}

func call(t *testing.T, app *fiber.App, method, path, auth, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestRouter_CustomersRequiereToken(t *testing.T) {
	app, _ := newRouterApp(t)

	resp := call(t, app, http.MethodGet, "/api/customers", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "MISSING_TOKEN")
}

func TestRouter_CustomerCrearYObtener(t *testing.T) {
	app, _ := newRouterApp(t)
	auth := bearer(t, 2, entity.RoleSalesperson)

	resp := call(t, app, http.MethodPost, "/api/customers", auth,
		`{"name":"  Acme SAS ","email":"Ventas@Acme.CO","estimatedValue":1500.5}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.CustomerMutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Cliente creado correctamente", created.Message)
	assert.Equal(t, "Acme SAS", created.Customer.Name)
	assert.Equal(t, "ventas@acme.co", created.Customer.Email)
	assert.Equal(t, entity.CustomerProspect, created.Customer.Status)

	resp = call(t, app, http.MethodGet, "/api/customers/1", auth, "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Customer dto.CustomerResponse `json:"customer"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, int64(1), got.Customer.ID)
}

func TestRouter_CustomerValidacion(t *testing.T) {
	app, _ := newRouterApp(t)
	auth := bearer(t, 2, entity.RoleSalesperson)

	resp := call(t, app, http.MethodPost, "/api/customers", auth, `{"name":"","email":"no-es-email"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", body.Error)
	fields := make([]string, 0, len(body.Errors))
	for _, fe := range body.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
}

func TestRouter_CustomerJSONMalFormado(t *testing.T) {
	app, _ := newRouterApp(t)

	resp := call(t, app, http.MethodPost, "/api/customers", bearer(t, 2, entity.RoleSalesperson), `{"name":`)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_CustomerIDInvalidoYNoEncontrado(t *testing.T) {
	app, _ := newRouterApp(t)
	auth := bearer(t, 2, entity.RoleSalesperson)

	resp := call(t, app, http.MethodGet, "/api/customers/abc", auth, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/customers/999", auth, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error)
}

func TestRouter_CustomerStatsNoCaeEnID(t *testing.T) {
	app, customers := newRouterApp(t)
	require.NoError(t, customers.Create(context.Background(), &entity.Customer{Name: "A", Status: entity.CustomerActive}))
	require.NoError(t, customers.Create(context.Background(), &entity.Customer{Name: "B", Status: entity.CustomerProspect}))

	resp := call(t, app, http.MethodGet, "/api/customers/stats", bearer(t, 2, entity.RoleSalesperson), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Stats dto.CustomerStatsResponse `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Stats.Total)
	assert.Equal(t, 1, body.Stats.Active)
	assert.Equal(t, 1, body.Stats.Prospects)
}

func TestRouter_CustomerUpdateParcial(t *testing.T) {
	app, customers := newRouterApp(t)
	require.NoError(t, customers.Create(context.Background(), &entity.Customer{Name: "Acme", City: "Bogotá", Status: entity.CustomerProspect}))

	resp := call(t, app, http.MethodPut, "/api/customers/1", bearer(t, 2, entity.RoleSalesperson), `{"status":"active"}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.CustomerMutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, entity.CustomerActive, out.Customer.Status)
	assert.Equal(t, "Acme", out.Customer.Name)
	assert.Equal(t, "Bogotá", out.Customer.City)
}

func TestRouter_CustomerDeleteConDependientes(t *testing.T) {
	app, customers := newRouterApp(t)
	require.NoError(t, customers.Create(context.Background(), &entity.Customer{Name: "Acme"}))
	customers.deps[1] = repository.DependentCounts{Opportunities: 1, Activities: 3}

	resp := call(t, app, http.MethodDelete, "/api/customers/1", bearer(t, 2, entity.RoleSalesperson), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, decodeError(t, resp).Message, "1 oportunidad y 3 actividades")

	ok, _ := customers.Exists(context.Background(), 1)
	assert.True(t, ok, "el cliente no debe borrarse")
}

func TestRouter_CustomerDelete(t *testing.T) {
	app, customers := newRouterApp(t)
	require.NoError(t, customers.Create(context.Background(), &entity.Customer{Name: "Acme"}))

	resp := call(t, app, http.MethodDelete, "/api/customers/1", bearer(t, 2, entity.RoleSalesperson), "")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ok, _ := customers.Exists(context.Background(), 1)
	assert.False(t, ok)
}

func TestRouter_UsersSoloAdmin(t *testing.T) {
	app, _ := newRouterApp(t)

	resp := call(t, app, http.MethodGet, "/api/auth/users", bearer(t, 2, entity.RoleSalesperson), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/auth/users", bearer(t, 1, entity.RoleAdmin), "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_RutaDesconocida404(t *testing.T) {
	app, _ := newRouterApp(t)

	resp := call(t, app, http.MethodGet, "/api/no-existe", "", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Ruta no encontrada", decodeError(t, resp).Message)
}

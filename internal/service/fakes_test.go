package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-project-hub/internal/auth"
	"go-project-hub/internal/model"
	"go-project-hub/internal/writelock"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{rows: map[int64]model.User{}}
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

// Create does not enforce email uniqueness so tests can observe the lock.
func (m *memoryUsers) Create(_ context.Context, u model.User) (model.User, error) {
	time.Sleep(2 * time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.rows[u.ID] = u
	return u, nil
}

func (m *memoryUsers) UpdateName(_ context.Context, id int64, name string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	u.Name = name
	m.rows[id] = u
	return u, nil
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryProjects struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Project
}

func newMemoryProjects() *memoryProjects {
	return &memoryProjects{rows: map[int64]model.Project{}}
}

func (m *memoryProjects) FindByID(_ context.Context, id int64) (model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return model.Project{}, model.ErrProjectNotFound
	}
	return p, nil
}

func (m *memoryProjects) ExistsByOwnerAndName(_ context.Context, ownerID int64, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.OwnerID == ownerID && strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryProjects) Create(_ context.Context, p model.Project) (model.Project, error) {
	time.Sleep(2 * time.Millisecond)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.rows[p.ID] = p
	return p, nil
}

func (m *memoryProjects) Update(_ context.Context, p model.Project) (model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[p.ID]
	if !ok || existing.OwnerID != p.OwnerID {
		return model.Project{}, model.ErrProjectNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	m.rows[p.ID] = p
	return p, nil
}

func (m *memoryProjects) Delete(_ context.Context, id int64, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.OwnerID != ownerID {
		return model.ErrProjectNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryProjects) List(_ context.Context, query model.ProjectQuery) ([]model.Project, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.Project, 0)
	for _, p := range m.rows {
		if p.Public || (query.ViewerID > 0 && p.OwnerID == query.ViewerID) {
			items = append(items, p)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, model.Meta{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1}, nil
}

func (m *memoryProjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memoryRisks struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Risk
}

func newMemoryRisks() *memoryRisks {
	return &memoryRisks{rows: map[int64]model.Risk{}}
}

func (m *memoryRisks) ListByProject(_ context.Context, projectID int64) ([]model.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]model.Risk, 0)
	for _, rk := range m.rows {
		if rk.ProjectID == projectID {
			items = append(items, rk)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (m *memoryRisks) FindByID(_ context.Context, projectID int64, id int64) (model.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rk, ok := m.rows[id]
	if !ok || rk.ProjectID != projectID {
		return model.Risk{}, model.ErrRiskNotFound
	}
	return rk, nil
}

func (m *memoryRisks) Create(_ context.Context, rk model.Risk) (model.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rk.ID = m.nextID
	m.rows[rk.ID] = rk
	return rk, nil
}

func (m *memoryRisks) Update(_ context.Context, rk model.Risk) (model.Risk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.rows[rk.ID]
	if !ok || existing.ProjectID != rk.ProjectID {
		return model.Risk{}, model.ErrRiskNotFound
	}
	m.rows[rk.ID] = rk
	return rk, nil
}

func (m *memoryRisks) Delete(_ context.Context, projectID int64, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rk, ok := m.rows[id]
	if !ok || rk.ProjectID != projectID {
		return model.ErrRiskNotFound
	}
	delete(m.rows, id)
	return nil
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	last    model.AuditQuery
}

func (m *memoryAudit) Log(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = query
	return append([]model.AuditEntry(nil), m.entries...), model.Meta{Page: 1, Limit: 50, Total: len(m.entries), TotalPages: 1}, nil
}

func (m *memoryAudit) actions(status string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0)
	for _, e := range m.entries {
		if e.Status == status {
			out = append(out, e.Action)
		}
	}
	return out
}

type stubIdentities struct {
	identity auth.Identity
	err      error
}

func (s stubIdentities) VerifyIDToken(_ context.Context, _ string, claimed auth.Identity) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	if s.identity.Email != "" {
		return s.identity, nil
	}
	return claimed, nil
}

type fixture struct {
	users    *memoryUsers
	projects *memoryProjects
	risks    *memoryRisks
	audit    *memoryAudit
	issuer   *auth.Issuer
	verifier auth.Verifier
	locks    *writelock.Keyed

	hasher *auth.PasswordHasher

	auth       *AuthService
	projectSvc *ProjectService
	riskSvc    *RiskService
	auditSvc   *AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	issuer, err := auth.NewIssuer("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)
	verifier, err := auth.NewJWTVerifier("test-secret", "HS256")
	require.NoError(t, err)

	f := &fixture{
		users:    newMemoryUsers(),
		projects: newMemoryProjects(),
		risks:    newMemoryRisks(),
		audit:    &memoryAudit{},
		issuer:   issuer,
		verifier: verifier,
		locks:    writelock.New(),
	}

	f.auditSvc = NewAuditService(f.audit)
	f.hasher = auth.NewPasswordHasher(bcrypt.MinCost)
	f.useIdentities(auth.TrustedIdentityVerifier{})
	f.projectSvc = NewProjectService(f.projects, f.locks, f.auditSvc)
	f.riskSvc = NewRiskService(f.risks, f.projectSvc, f.locks, f.auditSvc)
	return f
}

func (f *fixture) useIdentities(v auth.IdentityVerifier) {
	f.auth = NewAuthService(f.users, f.issuer, f.hasher, v, f.locks, f.auditSvc)
}

func (f *fixture) register(t *testing.T, email string) model.User {
	t.Helper()
	created, err := f.auth.Register(context.Background(), model.RegisterRequest{
		Email:    email,
		Name:     "Test",
		Password: "correct horse",
	}, model.AuditActor{IP: "127.0.0.1"})
	require.NoError(t, err)

	user, err := f.users.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	return user
}

package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cabin-roster/backend/config"
	"cabin-roster/backend/internal/model"
	"cabin-roster/backend/internal/repository"
	pkgerrors "cabin-roster/backend/pkg/errors"
)

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs []model.WorkerPreference
	err   error
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{}
}

func (m *mockPreferenceRepo) List(_ context.Context) ([]model.WorkerPreference, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := append([]model.WorkerPreference(nil), m.prefs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockPreferenceRepo) UpsertMany(_ context.Context, prefs []model.WorkerPreference) error {
	if m.err != nil {
		return m.err
	}
	maxPos := 0
	for _, p := range m.prefs {
		if p.Position > maxPos {
			maxPos = p.Position
		}
	}
	for i, p := range prefs {
		replaced := false
		for j := range m.prefs {
			if m.prefs[j].NameKey == p.NameKey {
				p.Position = m.prefs[j].Position
				m.prefs[j] = p
				replaced = true
				break
			}
		}
		if !replaced {
			p.Position = maxPos + i + 1
			m.prefs = append(m.prefs, p)
		}
	}
	return nil
}

func (m *mockPreferenceRepo) Delete(_ context.Context, nameKey string) error {
	for i, p := range m.prefs {
		if p.NameKey == nameKey {
			m.prefs = append(m.prefs[:i], m.prefs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) DeleteAll(_ context.Context) (int64, error) {
	n := int64(len(m.prefs))
	m.prefs = nil
	return n, nil
}

// ── Mock RosterRepository ──

type mockRosterRepo struct {
	workers []model.RosterWorker
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{}
}

func (m *mockRosterRepo) List(_ context.Context) ([]model.RosterWorker, error) {
	return append([]model.RosterWorker(nil), m.workers...), nil
}

func (m *mockRosterRepo) ReplaceAll(_ context.Context, workers []model.RosterWorker) error {
	m.workers = append([]model.RosterWorker(nil), workers...)
	return nil
}

func (m *mockRosterRepo) set(names ...string) {
	m.workers = nil
	for i, n := range names {
		m.workers = append(m.workers, model.RosterWorker{Position: i + 1, Name: n})
	}
}

// ── Mock AreaRepository ──

type mockAreaRepo struct {
	areas   map[string]*model.AreaSetting
	options *model.SpecialOptions
}

func newMockAreaRepo() *mockAreaRepo {
	return &mockAreaRepo{areas: make(map[string]*model.AreaSetting)}
}

func (m *mockAreaRepo) List(_ context.Context) ([]model.AreaSetting, error) {
	out := make([]model.AreaSetting, 0, len(m.areas))
	for _, a := range m.areas {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockAreaRepo) GetByID(_ context.Context, areaID string) (*model.AreaSetting, error) {
	if a, ok := m.areas[areaID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAreaRepo) Update(_ context.Context, area *model.AreaSetting) error {
	cur, ok := m.areas[area.AreaID]
	if !ok || cur.Version != area.Version {
		return pkgerrors.ErrOptimisticLock
	}
	area.Version++
	cp := *area
	m.areas[area.AreaID] = &cp
	return nil
}

func (m *mockAreaRepo) SeedDefaults(_ context.Context, areas []model.AreaSetting) (int64, error) {
	var n int64
	for i := range areas {
		if _, ok := m.areas[areas[i].AreaID]; ok {
			continue
		}
		a := areas[i]
		a.Version = 1
		m.areas[a.AreaID] = &a
		n++
	}
	return n, nil
}

func (m *mockAreaRepo) GetOptions(_ context.Context) (*model.SpecialOptions, error) {
	if m.options == nil {
		return &model.SpecialOptions{Singleton: true, TerraceWorkers: 1}, nil
	}
	cp := *m.options
	return &cp, nil
}

func (m *mockAreaRepo) SaveOptions(_ context.Context, opts *model.SpecialOptions) error {
	cp := *opts
	m.options = &cp
	return nil
}

// ── Mock AssignmentRunRepository ──

type mockRunRepo struct {
	runs  map[string]*model.AssignmentRun
	order []string
	err   error
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{runs: make(map[string]*model.AssignmentRun)}
}

// 保存 JSON 副本，模拟数据库读写后的对象隔离
func cloneRun(run *model.AssignmentRun) *model.AssignmentRun {
	data, _ := json.Marshal(run)
	var cp model.AssignmentRun
	_ = json.Unmarshal(data, &cp)
	cp.CreatedBy, cp.UpdatedBy = run.CreatedBy, run.UpdatedBy
	return &cp
}

func (m *mockRunRepo) Create(_ context.Context, run *model.AssignmentRun) error {
	if m.err != nil {
		return m.err
	}
	run.CreatedAt = time.Now()
	run.UpdatedAt = run.CreatedAt
	m.runs[run.RunID] = cloneRun(run)
	m.order = append(m.order, run.RunID)
	return nil
}

func (m *mockRunRepo) GetByID(_ context.Context, id string) (*model.AssignmentRun, error) {
	if r, ok := m.runs[id]; ok {
		return cloneRun(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRunRepo) GetLatest(ctx context.Context) (*model.AssignmentRun, error) {
	if len(m.order) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return m.GetByID(ctx, m.order[len(m.order)-1])
}

func (m *mockRunRepo) List(_ context.Context, offset, limit int) ([]model.AssignmentRun, int64, error) {
	var out []model.AssignmentRun
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, *cloneRun(m.runs[m.order[i]]))
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *mockRunRepo) Update(_ context.Context, run *model.AssignmentRun) error {
	cur, ok := m.runs[run.RunID]
	if !ok || cur.Version != run.Version {
		return pkgerrors.ErrOptimisticLock
	}
	run.Version++
	m.runs[run.RunID] = cloneRun(run)
	return nil
}

// ── Mock Cache ──

type mockCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	blacklisted map[string]time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), blacklisted: make(map[string]time.Duration)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dst)
}

func (c *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mockCache) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklisted[jti] = ttl
	return nil
}

func (c *mockCache) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.blacklisted[jti]
	return ok, nil
}

func (c *mockCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

// ── 测试环境 ──

type testEnv struct {
	cfg    *config.Config
	repo   *repository.Repository
	prefs  *mockPreferenceRepo
	roster *mockRosterRepo
	areas  *mockAreaRepo
	runs   *mockRunRepo
	cache  *mockCache
	gate   *sync.Mutex
	logger *zap.Logger
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cfg: &config.Config{
			Auth: config.AuthConfig{JWTSecret: "test-secret-0123456789", AccessTokenTTL: time.Hour},
			Assignment: config.AssignmentConfig{
				UnrankedFallback: true,
				CacheTTL:         time.Minute,
			},
		},
		prefs:  newMockPreferenceRepo(),
		roster: newMockRosterRepo(),
		areas:  newMockAreaRepo(),
		runs:   newMockRunRepo(),
		cache:  newMockCache(),
		gate:   &sync.Mutex{},
		logger: zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Preference:    env.prefs,
		Roster:        env.roster,
		Area:          env.areas,
		AssignmentRun: env.runs,
	}
	return env
}

func (e *testEnv) preferenceService() PreferenceService {
	return NewPreferenceService(e.repo, e.gate, e.logger)
}

func (e *testEnv) rosterService() RosterService {
	return NewRosterService(e.repo, e.cache, e.gate, e.logger)
}

func (e *testEnv) areaService() AreaService {
	return NewAreaService(e.cfg, e.repo, e.cache, e.gate, e.logger)
}

func (e *testEnv) assignmentService() AssignmentService {
	return NewAssignmentService(e.cfg, e.repo, e.cache, e.gate, e.logger)
}

func (e *testEnv) exportService() ExportService {
	return NewExportService(e.repo, e.logger)
}

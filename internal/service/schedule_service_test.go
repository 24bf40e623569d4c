package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldcrew/fieldpay-api/internal/models"
	appErrors "github.com/fieldcrew/fieldpay-api/pkg/errors"
)

type ruleKey struct {
	scope   models.ScheduleScope
	scopeID string
}

type mockScheduleRuleRepo struct {
	rules   map[ruleKey]*models.WorkingScheduleRule
	lookups []models.ScheduleScope
}

func (m *mockScheduleRuleRepo) Create(ctx context.Context, rule *models.WorkingScheduleRule) error {
	if m.rules == nil {
		m.rules = make(map[ruleKey]*models.WorkingScheduleRule)
	}
	rule.ID = "rule-created"
	m.rules[ruleKey{rule.Scope, rule.ScopeID}] = rule
	return nil
}

func (m *mockScheduleRuleRepo) FindLatest(ctx context.Context, scope models.ScheduleScope, scopeID string) (*models.WorkingScheduleRule, error) {
	m.lookups = append(m.lookups, scope)
	if rule, ok := m.rules[ruleKey{scope, scopeID}]; ok {
		return rule, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRuleRepo) List(ctx context.Context, filter models.ScheduleRuleFilter) ([]models.WorkingScheduleRule, int, error) {
	return nil, 0, nil
}

type mockWorkerRepo struct {
	workers map[string]*models.Worker
	groups  map[string]*models.WorkerGroup
}

func (m *mockWorkerRepo) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockWorkerRepo) FindGroup(ctx context.Context, id string) (*models.WorkerGroup, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func fullWorker() *models.Worker {
	return &models.Worker{
		ID:       "w1",
		GroupID:  strPtr("g1"),
		ClientID: strPtr("c1"),
	}
}

func TestResolveWorkerScopeWins(t *testing.T) {
	rules := &mockScheduleRuleRepo{rules: map[ruleKey]*models.WorkingScheduleRule{
		{models.ScheduleScopeWorker, "w1"}:     {ID: "worker-rule", Scope: models.ScheduleScopeWorker},
		{models.ScheduleScopeGroup, "g1"}:      {ID: "group-rule", Scope: models.ScheduleScopeGroup},
		{models.ScheduleScopeOrganization, ""}: {ID: "org-rule", Scope: models.ScheduleScopeOrganization},
	}}
	workers := &mockWorkerRepo{workers: map[string]*models.Worker{"w1": fullWorker()}}
	svc := NewScheduleService(rules, workers, validator.New(), zap.NewNop())

	rule, err := svc.Resolve(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "worker-rule", rule.ID)
	assert.Equal(t, []models.ScheduleScope{models.ScheduleScopeWorker}, rules.lookups)
}

func TestResolveFallsThroughToGroup(t *testing.T) {
	rules := &mockScheduleRuleRepo{rules: map[ruleKey]*models.WorkingScheduleRule{
		{models.ScheduleScopeGroup, "g1"}: {ID: "group-rule", Scope: models.ScheduleScopeGroup},
	}}
	workers := &mockWorkerRepo{workers: map[string]*models.Worker{"w1": fullWorker()}}
	svc := NewScheduleService(rules, workers, validator.New(), zap.NewNop())

	rule, err := svc.Resolve(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "group-rule", rule.ID)
}

func TestResolveFieldScopeViaGroup(t *testing.T) {
	rules := &mockScheduleRuleRepo{rules: map[ruleKey]*models.WorkingScheduleRule{
		{models.ScheduleScopeField, "f1"}: {ID: "field-rule", Scope: models.ScheduleScopeField},
	}}
	workers := &mockWorkerRepo{
		workers: map[string]*models.Worker{"w1": fullWorker()},
		groups:  map[string]*models.WorkerGroup{"g1": {ID: "g1", FieldID: strPtr("f1")}},
	}
	svc := NewScheduleService(rules, workers, validator.New(), zap.NewNop())

	rule, err := svc.Resolve(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "field-rule", rule.ID)
}

func TestResolveOrganizationFallback(t *testing.T) {
	rules := &mockScheduleRuleRepo{rules: map[ruleKey]*models.WorkingScheduleRule{
		{models.ScheduleScopeOrganization, ""}: {ID: "org-rule", Scope: models.ScheduleScopeOrganization},
	}}
	// Worker without group or client: only worker and organization lookups run.
	workers := &mockWorkerRepo{workers: map[string]*models.Worker{"w1": {ID: "w1"}}}
	svc := NewScheduleService(rules, workers, validator.New(), zap.NewNop())

	rule, err := svc.Resolve(context.Background(), "w1")
	require.NoError(t, err)
	assert.Equal(t, "org-rule", rule.ID)
	assert.Equal(t, []models.ScheduleScope{models.ScheduleScopeWorker, models.ScheduleScopeOrganization}, rules.lookups)
}

func TestResolveNoScheduleFound(t *testing.T) {
	rules := &mockScheduleRuleRepo{}
	workers := &mockWorkerRepo{workers: map[string]*models.Worker{"w1": fullWorker()}}
	svc := NewScheduleService(rules, workers, validator.New(), zap.NewNop())

	_, err := svc.Resolve(context.Background(), "w1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoScheduleFound.Code, appErr.Code)
}

func TestResolveUnknownWorker(t *testing.T) {
	svc := NewScheduleService(&mockScheduleRuleRepo{}, &mockWorkerRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Resolve(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCreateRuleRequiresScopeID(t *testing.T) {
	rules := &mockScheduleRuleRepo{}
	svc := NewScheduleService(rules, &mockWorkerRepo{}, validator.New(), zap.NewNop())

	_, err := svc.CreateRule(context.Background(), CreateScheduleRuleRequest{
		Scope: string(models.ScheduleScopeGroup), HoursPerDay: 8, DaysPerWeek: 5,
	})
	require.Error(t, err)

	rule, err := svc.CreateRule(context.Background(), CreateScheduleRuleRequest{
		Scope: string(models.ScheduleScopeOrganization), HoursPerDay: 8, DaysPerWeek: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleScopeOrganization, rule.Scope)
}

func TestCreateRuleRejectsUnknownScope(t *testing.T) {
	svc := NewScheduleService(&mockScheduleRuleRepo{}, &mockWorkerRepo{}, validator.New(), zap.NewNop())

	_, err := svc.CreateRule(context.Background(), CreateScheduleRuleRequest{
		Scope: "REGION", HoursPerDay: 8, DaysPerWeek: 5,
	})
	require.Error(t, err)
}

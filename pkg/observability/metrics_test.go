package observability_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/metamaze"
	"github.com/aretw0/metamaze/pkg/domain"
	"github.com/aretw0/metamaze/pkg/dsl"
	"github.com/aretw0/metamaze/pkg/maze"
	"github.com/aretw0/metamaze/pkg/mazemap"
	"github.com/aretw0/metamaze/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics()
	hooks := m.Hooks()

	hooks.OnRoomEnter(ctx, &domain.StepEvent{Door: 0, Moved: true})
	hooks.OnRoomEnter(ctx, &domain.StepEvent{Door: 1, Moved: true})
	hooks.OnDoorBlocked(ctx, &domain.StepEvent{Door: 2})
	hooks.OnGoalReached(ctx, &domain.GoalEvent{Goal: 1})
	hooks.OnPlan(ctx, &domain.PlanEvent{Door: -1, MapType: "meta", ValidInstances: 3})
	hooks.OnPlan(ctx, &domain.PlanEvent{Door: 2, MapType: "meta", ValidInstances: 1})
	hooks.OnPlan(ctx, &domain.PlanEvent{Door: 3, Here: true, MapType: "instance", ValidInstances: 1})

	for name, want := range map[string]int{
		"metamaze_goals_reached_total":  1,
		"metamaze_steps_total":          2,
		"metamaze_plans_total":          3,
		"metamaze_plan_valid_instances": 2,
	} {
		got, err := testutil.GatherAndCount(m.Registry(), name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestMetrics_EngineIntegration(t *testing.T) {
	ctx := context.Background()
	m := observability.NewMetrics()

	b := dsl.New(2, 2, 1).Marks(maze.MarkOptions{})
	b.Room(0).Door(0).To(1)
	b.Room(1).Goal(0)
	mz, err := b.Build()
	require.NoError(t, err)
	eng, err := metamaze.NewFromMaze(mz, mazemap.MetaMap, metamaze.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	_, err = eng.Plan(ctx, 0)
	require.NoError(t, err)
	_, err = eng.Step(ctx, 1)
	require.NoError(t, err)
	_, err = eng.Step(ctx, 0)
	require.NoError(t, err)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, `metamaze_steps_total{outcome="blocked"} 1`)
	assert.Contains(t, text, `metamaze_steps_total{outcome="moved"} 1`)
	assert.Contains(t, text, `metamaze_goals_reached_total{goal="0"} 1`)
	assert.Contains(t, text, `metamaze_plans_total{advice="door",map_type="meta"} 1`)
	assert.Contains(t, text, "go_goroutines")
}

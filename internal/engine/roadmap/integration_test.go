//go:build integration

package roadmap

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against TEST_DATABASE_URL, e.g.
// TEST_DATABASE_URL=postgres://localhost/roadmap_test go test -tags integration ./internal/engine/roadmap/
func openTestPostgres(t *testing.T) *PGStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s, err := ConnectPostgres(ctx, url)
	require.NoError(t, err)
	_, err = s.pool.Exec(ctx, `TRUNCATE roadmap_milestone_skills, roadmap_milestones, roadmap_skills, roadmap_careers RESTART IDENTITY`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIntegration_PostgresSeedAndSearch(t *testing.T) {
	g := NewGraph(openTestPostgres(t))
	ctx := context.Background()

	n, err := Seed(ctx, g)
	require.NoError(t, err)
	assert.Equal(t, len(Catalog), n)

	got, err := g.SearchCareersBySkills(ctx, []string{"docker", "linux", "ci/cd"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Backend Developer", got[0].Title)
	assert.Equal(t, "DevOps Engineer", got[1].Title)

	res, err := g.AnalyzeCareer(ctx, got[1].ID, nil, "linux, docker")
	require.NoError(t, err)
	assert.Contains(t, res.Have, "Docker")
}

func TestIntegration_PostgresConstraints(t *testing.T) {
	g := NewGraph(openTestPostgres(t))
	ctx := context.Background()

	c, ms := buildCareer(t, g, "Data Engineer", []string{"Spark"}, []string{"Spark", "Airflow"})

	_, err := g.AddSkill(ctx, "SPARK", "")
	require.ErrorIs(t, err, ErrDuplicate)
	_, err = g.AddMilestone(ctx, c.ID, "again", 1)
	require.ErrorIs(t, err, ErrDuplicate)

	s, err := g.EnsureSkill(ctx, "airflow", "")
	require.NoError(t, err)
	created, err := g.LinkSkillToMilestone(ctx, ms[1].ID, s.ID, nil)
	require.NoError(t, err)
	assert.False(t, created)

	req, err := g.RequiredSkillNames(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Airflow", "Spark"}, req)

	require.NoError(t, g.RemoveCareer(ctx, c.ID))
	_, err = g.GetRoadmap(ctx, c.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codeduel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `[
  {
    "title": "Sum",
    "lastVersion": {"data": {
      "statement": "Add a and b.",
      "inputDescription": "Two integers.",
      "outputDescription": "Their sum.",
      "constraints": "0 <= a, b <= 100",
      "testCases": [
        {"title": 1, "isTest": true, "testIn": "1 2", "testOut": "3"},
        {"title": "Validator 1", "isValidator": true, "testIn": "5 5", "testOut": "10"}
      ]
    }}
  },
  {
    "title": "Reversed",
    "lastVersion": {"data": {
      "statement": "no statement (reverse)",
      "inputDescription": "no input description (reverse)",
      "outputDescription": "no output description (reverse)",
      "testCases": []
    }}
  },
  {"title": "Draft"},
  {"title": "Broken", "lastVersion": {}}
]`

func TestParseCorpus(t *testing.T) {
	problems, stats, err := ParseCorpus([]byte(sampleCorpus))
	require.NoError(t, err)

	assert.Equal(t, CorpusStats{Total: 4, Kept: 1, Reverse: 1, Invalid: 2}, stats)
	require.Len(t, problems, 1)
	p := problems[0]
	assert.Equal(t, "Sum", p.Title)
	assert.Equal(t, "0 <= a, b <= 100", p.Constraints)
	require.Len(t, p.TestCases, 2)
	assert.Equal(t, "1", p.TestCases[0].Title)
	assert.True(t, p.TestCases[0].IsTest)
	assert.Equal(t, "Validator 1", p.TestCases[1].Title)
	assert.True(t, p.TestCases[1].IsValidator)
}

func TestParseCorpusRejectsNonArray(t *testing.T) {
	_, _, err := ParseCorpus([]byte(`{"title":"x"}`))
	assert.Error(t, err)
}

func TestFileProblemSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problems.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCorpus), 0o644))

	src, err := NewFileProblemSource(path)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())

	p, err := src.GetRandomProblem(context.Background())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Sum", p.Title)
}

func TestFileProblemSourceMissingFile(t *testing.T) {
	src, err := NewFileProblemSource(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	p, err := src.GetRandomProblem(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, p)
}

type memRepo struct {
	problems []*model.Problem
	sampled  int
}

func (r *memRepo) InsertMany(ctx context.Context, problems []*model.Problem) (int, error) {
	r.problems = append(r.problems, problems...)
	return len(problems), nil
}
func (r *memRepo) Count(ctx context.Context) (int64, error) { return int64(len(r.problems)), nil }
func (r *memRepo) DeleteAll(ctx context.Context) error      { r.problems = nil; return nil }
func (r *memRepo) Random(ctx context.Context, n int) ([]*model.Problem, error) {
	r.sampled++
	return r.problems[:min(n, len(r.problems))], nil
}
func (r *memRepo) GetByTitle(ctx context.Context, title string) (*model.Problem, error) {
	for _, p := range r.problems {
		if p.Title == title {
			return p, nil
		}
	}
	return nil, nil
}

type memPool struct {
	problems []*model.Problem
}

func (p *memPool) Add(ctx context.Context, problems ...*model.Problem) error {
	p.problems = append(p.problems, problems...)
	return nil
}
func (p *memPool) Pop(ctx context.Context) (*model.Problem, error) {
	if len(p.problems) == 0 {
		return nil, nil
	}
	top := p.problems[0]
	p.problems = p.problems[1:]
	return top, nil
}
func (p *memPool) Size(ctx context.Context) (int64, error) { return int64(len(p.problems)), nil }
func (p *memPool) Clear(ctx context.Context) error          { p.problems = nil; return nil }

func TestProblemServiceRefillsPool(t *testing.T) {
	repo := &memRepo{problems: []*model.Problem{{Title: "Sum"}, {Title: "Max"}}}
	pool := &memPool{}
	svc := NewProblemService(repo, pool)
	ctx := context.Background()

	first, err := svc.GetRandomProblem(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, repo.sampled)
	require.Len(t, pool.problems, 1, "the unpicked problem is pooled")
	assert.NotEqual(t, first.Title, pool.problems[0].Title)

	second, err := svc.GetRandomProblem(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.sampled, "second draw should be served by the pool")
	assert.NotEqual(t, first.Title, second.Title)

	size, err := svc.PoolSize(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestProblemServiceResamplesDrainedPool(t *testing.T) {
	repo := &memRepo{problems: []*model.Problem{{Title: "Sum"}, {Title: "Max"}, {Title: "Min"}}}
	svc := NewProblemService(repo, &memPool{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.GetRandomProblem(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.sampled, "one sample serves every problem once")

	_, err := svc.GetRandomProblem(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.sampled, "a drained pool is reseeded")
}

func TestProblemServicePoolSizeWithoutPool(t *testing.T) {
	size, err := NewProblemService(&memRepo{}, nil).PoolSize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestFilterNewProblems(t *testing.T) {
	repo := &memRepo{problems: []*model.Problem{{Title: "Sum"}}}
	incoming := []*model.Problem{{Title: "Sum"}, {Title: "Max"}, {Title: "Max"}, {Title: "Min"}}

	fresh, err := FilterNewProblems(context.Background(), repo, incoming)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	assert.Equal(t, "Max", fresh[0].Title)
	assert.Equal(t, "Min", fresh[1].Title)
}

func TestProblemServiceEmptyCollection(t *testing.T) {
	svc := NewProblemService(&memRepo{}, nil)
	p, err := svc.GetRandomProblem(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, p)
}

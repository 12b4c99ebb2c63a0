package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math/rand/v2"
	"os"

	"codeduel/internal/cache"
	"codeduel/internal/model"
	"codeduel/internal/repository"
)

// ProblemSource supplies problems to the rotation. A nil problem with a nil
// error means the corpus is empty.
type ProblemSource interface {
	GetRandomProblem(ctx context.Context) (*model.Problem, error)
}

// FileProblemSource serves problems from a problems.json file loaded at startup
type FileProblemSource struct {
	problems []*model.Problem
}

// NewFileProblemSource loads path. A missing file yields an empty corpus and a warning.
func NewFileProblemSource(path string) (*FileProblemSource, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("[Problems] WARNING: problem file %s not found, no problems will be available", path)
		return &FileProblemSource{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read problem file: %w", err)
	}

	problems, stats, err := ParseCorpus(data)
	if err != nil {
		return nil, err
	}
	log.Printf("[Problems] Loaded %d problems from %s (%d reverse, %d invalid skipped)", stats.Kept, path, stats.Reverse, stats.Invalid)
	return &FileProblemSource{problems: problems}, nil
}

// NewStaticProblemSource serves a fixed set of problems
func NewStaticProblemSource(problems ...*model.Problem) *FileProblemSource {
	return &FileProblemSource{problems: problems}
}

func (s *FileProblemSource) GetRandomProblem(ctx context.Context) (*model.Problem, error) {
	if len(s.problems) == 0 {
		log.Printf("[Problems] WARNING: no problems are loaded")
		return nil, nil
	}
	return s.problems[rand.IntN(len(s.problems))], nil
}

// Len returns the corpus size
func (s *FileProblemSource) Len() int {
	return len(s.problems)
}

// ProblemService serves problems from MongoDB with a Redis pool in front.
// Each pooled problem is served once; an empty pool is reseeded from a fresh
// $sample of the collection, so draws keep moving through the whole corpus.
type ProblemService struct {
	repo       repository.ProblemRepo
	pool       cache.ProblemCache
	refillSize int
}

// NewProblemService creates a Mongo-backed problem source. pool may be nil.
func NewProblemService(repo repository.ProblemRepo, pool cache.ProblemCache) *ProblemService {
	return &ProblemService{
		repo:       repo,
		pool:       pool,
		refillSize: 50,
	}
}

func (s *ProblemService) GetRandomProblem(ctx context.Context) (*model.Problem, error) {
	if s.pool != nil {
		p, err := s.pool.Pop(ctx)
		if err != nil {
			log.Printf("[Problems] WARNING: problem pool unavailable, falling back to mongo: %v", err)
		} else if p != nil {
			return p, nil
		}
	}

	problems, err := s.repo.Random(ctx, s.refillSize)
	if err != nil {
		return nil, fmt.Errorf("failed to sample problems: %w", err)
	}
	if len(problems) == 0 {
		log.Printf("[Problems] WARNING: problem collection is empty")
		return nil, nil
	}

	i := rand.IntN(len(problems))
	picked := problems[i]
	if s.pool != nil {
		rest := append(problems[:i:i], problems[i+1:]...)
		if err := s.pool.Add(ctx, rest...); err != nil {
			log.Printf("[Problems] WARNING: failed to refill problem pool: %v", err)
		}
	}
	return picked, nil
}

// PoolSize reports how many problems are waiting in the pool; 0 without a pool
func (s *ProblemService) PoolSize(ctx context.Context) (int64, error) {
	if s.pool == nil {
		return 0, nil
	}
	return s.pool.Size(ctx)
}

// FilterNewProblems drops problems whose title is already stored, and repeated
// titles within problems itself.
func FilterNewProblems(ctx context.Context, repo repository.ProblemRepo, problems []*model.Problem) ([]*model.Problem, error) {
	seen := make(map[string]bool, len(problems))
	fresh := make([]*model.Problem, 0, len(problems))
	for _, p := range problems {
		if seen[p.Title] {
			continue
		}
		seen[p.Title] = true

		existing, err := repo.GetByTitle(ctx, p.Title)
		if err != nil {
			return nil, fmt.Errorf("failed to look up %q: %w", p.Title, err)
		}
		if existing == nil {
			fresh = append(fresh, p)
		}
	}
	return fresh, nil
}

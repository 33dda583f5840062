// Package service orchestrates lesson creation: cache lookup by input hash,
// generation, formatting, scoring, and persistence.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/skillence/skillence/internal/formatter"
	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/logger"
	"github.com/skillence/skillence/internal/readability"
	"github.com/skillence/skillence/internal/store"
)

// Generator produces validated lesson content.
type Generator interface {
	Generate(ctx context.Context, req lesson.Request) (lesson.Content, int, error)
}

// LessonStore is the persistence surface the service depends on.
type LessonStore interface {
	FindByHash(ctx context.Context, hash string) (*store.Artifact, error)
	Persist(ctx context.Context, p store.PersistParams) (*store.Artifact, bool, error)
	FindByID(ctx context.Context, id string) (*store.Artifact, error)
	List(ctx context.Context, offset, limit int) ([]store.Artifact, int64, error)
}

// Quality carries the readability verdict attached to every lesson response.
type Quality struct {
	Readability readability.Summary `json:"readability"`
}

// CreateResult is the outcome of a create call.
type CreateResult struct {
	LessonID   string  `json:"lesson_id"`
	Title      string  `json:"title"`
	Quality    Quality `json:"quality"`
	TokensUsed int     `json:"tokens_used"`
	FromCache  bool    `json:"from_cache"`
}

// LessonDetail is a full stored lesson.
type LessonDetail struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Objectives []string `json:"objectives"`
	Plan       []string `json:"plan"`
	Subject    string   `json:"subject"`
	Audience   string   `json:"audience"`
	Duration   string   `json:"duration"`
	CreatedAt  string   `json:"created_at"`
	Quality    Quality  `json:"quality"`
}

// LessonService coordinates the lesson pipeline.
type LessonService struct {
	gen   Generator
	store LessonStore
	log   *logger.Logger
}

// NewLessonService creates a LessonService.
func NewLessonService(gen Generator, st LessonStore, log *logger.Logger) *LessonService {
	return &LessonService{gen: gen, store: st, log: log}
}

// Create returns the lesson for the request, generating it on a cache miss.
// Identical normalized requests share one stored lesson.
func (s *LessonService) Create(ctx context.Context, req lesson.Request) (*CreateResult, error) {
	hash := req.Hash()

	cached, err := s.store.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		s.log.Info("lesson cache hit", "hash", hash, "lesson_id", cached.LessonID)
		return s.cachedResult(cached, req.Audience, 0)
	}

	content, tokens, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	doc, err := formatter.Format(content, req.Audience)
	if err != nil {
		return nil, err
	}
	if !doc.Readability.Acceptable {
		s.log.Warn("lesson readability outside audience band",
			"audience", req.Audience,
			"score", doc.Readability.Score,
		)
	}

	art, inserted, err := s.store.Persist(ctx, store.PersistParams{
		Hash:       hash,
		Subject:    req.Subject,
		Audience:   string(req.Audience),
		Duration:   string(req.Duration),
		Title:      doc.Title,
		Markdown:   doc.Markdown,
		Objectives: content.Objectives,
		Plan:       content.Plan,
	})
	if err != nil {
		return nil, err
	}

	if !inserted {
		// A concurrent identical request won the insert. Report the stored
		// lesson; the tokens were still spent.
		s.log.Info("lesson insert lost race, returning stored lesson",
			"hash", hash, "lesson_id", art.LessonID)
		return s.cachedResult(art, req.Audience, tokens)
	}

	return &CreateResult{
		LessonID:   art.LessonID,
		Title:      art.Title,
		Quality:    Quality{Readability: doc.Readability},
		TokensUsed: tokens,
		FromCache:  false,
	}, nil
}

// Get returns a stored lesson by ID, or (nil, nil) when absent. The
// readability summary is recomputed from the stored text.
func (s *LessonService) Get(ctx context.Context, id string) (*LessonDetail, error) {
	art, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, nil
	}

	summary, err := rescore(art)
	if err != nil {
		return nil, err
	}

	return &LessonDetail{
		ID:         art.LessonID,
		Title:      art.Title,
		Content:    art.Markdown,
		Objectives: art.Objectives,
		Plan:       art.Plan,
		Subject:    art.Subject,
		Audience:   art.Audience,
		Duration:   art.Duration,
		CreatedAt:  art.CreatedAt.UTC().Format(time.RFC3339),
		Quality:    Quality{Readability: summary},
	}, nil
}

// List returns a page of stored lessons, newest first.
func (s *LessonService) List(ctx context.Context, offset, limit int) ([]LessonDetail, int64, error) {
	arts, total, err := s.store.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	details := make([]LessonDetail, 0, len(arts))
	for i := range arts {
		summary, err := rescore(&arts[i])
		if err != nil {
			return nil, 0, err
		}
		details = append(details, LessonDetail{
			ID:        arts[i].LessonID,
			Title:     arts[i].Title,
			Subject:   arts[i].Subject,
			Audience:  arts[i].Audience,
			Duration:  arts[i].Duration,
			CreatedAt: arts[i].CreatedAt.UTC().Format(time.RFC3339),
			Quality:   Quality{Readability: summary},
		})
	}
	return details, total, nil
}

func (s *LessonService) cachedResult(art *store.Artifact, audience lesson.Audience, tokens int) (*CreateResult, error) {
	summary, err := rescoreFor(art, audience)
	if err != nil {
		return nil, err
	}
	if !summary.Acceptable {
		s.log.Warn("cached lesson readability outside audience band",
			"audience", audience,
			"score", summary.Score,
		)
	}
	return &CreateResult{
		LessonID:   art.LessonID,
		Title:      art.Title,
		Quality:    Quality{Readability: summary},
		TokensUsed: tokens,
		FromCache:  true,
	}, nil
}

func rescore(art *store.Artifact) (readability.Summary, error) {
	return rescoreFor(art, lesson.Audience(art.Audience))
}

// rescoreFor recomputes the readability summary from the stored text, with
// the trailing metrics section stripped so the score reflects the lesson
// body only.
func rescoreFor(art *store.Artifact, audience lesson.Audience) (readability.Summary, error) {
	text := art.Markdown
	if i := strings.Index(text, "\n## Readability metrics\n"); i >= 0 {
		text = text[:i]
	}
	score, err := readability.Analyze(text, audience)
	if err != nil {
		return readability.Summary{}, err
	}
	return score.Summary(), nil
}

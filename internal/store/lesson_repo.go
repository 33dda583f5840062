package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Artifact is a stored lesson joined with its owning request.
type Artifact struct {
	LessonID  string
	RequestID string
	Title     string
	Markdown  string

	Objectives []string
	Plan       []string

	Subject   string
	Audience  string
	Duration  string
	CreatedAt time.Time
}

// PersistParams carries everything needed to store one generated lesson.
type PersistParams struct {
	Hash     string
	Subject  string
	Audience string
	Duration string

	Title      string
	Markdown   string
	Objectives []string
	Plan       []string
}

// LessonRepo reads and writes lesson artifacts.
type LessonRepo struct {
	db *gorm.DB
}

// FindByHash returns the artifact for an input hash, or (nil, nil) when no
// request with that hash exists.
func (r *LessonRepo) FindByHash(ctx context.Context, hash string) (*Artifact, error) {
	var req Request
	err := r.db.WithContext(ctx).
		Preload("Lessons").
		Where("input_hash = ?", hash).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find request by hash: %w", err)
	}
	if len(req.Lessons) == 0 {
		return nil, nil
	}
	return toArtifact(&req, &req.Lessons[0]), nil
}

// Persist stores the request and its lesson in one transaction. The returned
// bool reports whether this call inserted the row; when a concurrent request
// with the same hash won the insert race, the winner's artifact is returned
// with inserted=false.
func (r *LessonRepo) Persist(ctx context.Context, p PersistParams) (*Artifact, bool, error) {
	req := Request{
		InputHash: p.Hash,
		Subject:   p.Subject,
		Audience:  p.Audience,
		Duration:  p.Duration,
	}
	les := Lesson{
		Title:      p.Title,
		ContentMD:  p.Markdown,
		Objectives: p.Objectives,
		Plan:       p.Plan,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		les.RequestID = req.ID
		return tx.Create(&les).Error
	})
	if err == nil {
		return toArtifact(&req, &les), true, nil
	}

	if isDuplicateKey(err) {
		existing, ferr := r.FindByHash(ctx, p.Hash)
		if ferr != nil {
			return nil, false, ferr
		}
		if existing != nil {
			return existing, false, nil
		}
	}
	return nil, false, fmt.Errorf("persist lesson: %w", err)
}

// FindByID returns the artifact for a lesson ID, or (nil, nil) when absent.
func (r *LessonRepo) FindByID(ctx context.Context, id string) (*Artifact, error) {
	var les Lesson
	err := r.db.WithContext(ctx).
		Preload("Request").
		Where("id = ?", id).
		First(&les).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson by id: %w", err)
	}
	return toArtifact(les.Request, &les), nil
}

// List returns a page of lessons, newest first.
func (r *LessonRepo) List(ctx context.Context, offset, limit int) ([]Artifact, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Lesson{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	var rows []Lesson
	err := r.db.WithContext(ctx).
		Preload("Request").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	artifacts := make([]Artifact, 0, len(rows))
	for i := range rows {
		artifacts = append(artifacts, *toArtifact(rows[i].Request, &rows[i]))
	}
	return artifacts, total, nil
}

func toArtifact(req *Request, les *Lesson) *Artifact {
	a := &Artifact{
		LessonID:   les.ID,
		RequestID:  les.RequestID,
		Title:      les.Title,
		Markdown:   les.ContentMD,
		Objectives: les.Objectives,
		Plan:       les.Plan,
		CreatedAt:  les.CreatedAt,
	}
	if req != nil {
		a.Subject = req.Subject
		a.Audience = req.Audience
		a.Duration = req.Duration
	}
	return a
}

// isDuplicateKey matches unique-index violations. The string check covers
// SQLite drivers whose errors gorm does not translate.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

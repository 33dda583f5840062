package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleParams(hash string) PersistParams {
	return PersistParams{
		Hash:       hash,
		Subject:    "photosynthesis",
		Audience:   "teen",
		Duration:   "short",
		Title:      "Photosynthesis",
		Markdown:   "# Photosynthesis\n\nPlants make food from light.\n",
		Objectives: []string{"Explain the process"},
		Plan:       []string{"Intro", "Steps"},
	}
}

func TestLessonRepo_PersistAndFindByHash(t *testing.T) {
	s := newTestStore(t)
	repo := s.Lessons()
	ctx := context.Background()

	missing, err := repo.FindByHash(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown hash, got %+v", missing)
	}

	art, inserted, err := repo.Persist(ctx, sampleParams("hash-1"))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if !inserted {
		t.Fatal("expected inserted=true on first persist")
	}
	if art.LessonID == "" || art.RequestID == "" {
		t.Fatalf("expected generated IDs, got %+v", art)
	}

	found, err := repo.FindByHash(ctx, "hash-1")
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if found == nil {
		t.Fatal("expected artifact")
	}
	if found.LessonID != art.LessonID {
		t.Fatalf("expected lesson %s, got %s", art.LessonID, found.LessonID)
	}
	if found.Subject != "photosynthesis" || found.Audience != "teen" || found.Duration != "short" {
		t.Fatalf("request fields not joined: %+v", found)
	}
	if len(found.Objectives) != 1 || len(found.Plan) != 2 {
		t.Fatalf("json slices not round-tripped: %+v", found)
	}
}

func TestLessonRepo_DuplicateHashReturnsWinner(t *testing.T) {
	s := newTestStore(t)
	repo := s.Lessons()
	ctx := context.Background()

	first, inserted, err := repo.Persist(ctx, sampleParams("hash-dup"))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if !inserted {
		t.Fatal("expected inserted=true")
	}

	params := sampleParams("hash-dup")
	params.Title = "A different render"
	second, inserted, err := repo.Persist(ctx, params)
	if err != nil {
		t.Fatalf("second persist: %v", err)
	}
	if inserted {
		t.Fatal("expected inserted=false on duplicate hash")
	}
	if second.LessonID != first.LessonID {
		t.Fatalf("expected winner's lesson %s, got %s", first.LessonID, second.LessonID)
	}
	if second.Title != "Photosynthesis" {
		t.Fatalf("expected winner's title, got %q", second.Title)
	}
}

func TestLessonRepo_FindByID(t *testing.T) {
	s := newTestStore(t)
	repo := s.Lessons()
	ctx := context.Background()

	missing, err := repo.FindByID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}

	art, _, err := repo.Persist(ctx, sampleParams("hash-2"))
	if err != nil {
		t.Fatalf("persist: %v", err)
	}

	found, err := repo.FindByID(ctx, art.LessonID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected artifact")
	}
	if found.Audience != "teen" {
		t.Fatalf("owning request not preloaded: %+v", found)
	}
}

func TestLessonRepo_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Lessons()
	ctx := context.Background()

	for _, hash := range []string{"list-1", "list-2", "list-3"} {
		if _, _, err := repo.Persist(ctx, sampleParams(hash)); err != nil {
			t.Fatalf("persist %s: %v", hash, err)
		}
	}

	page, total, err := repo.List(ctx, 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page))
	}

	rest, _, err := repo.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(rest) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rest))
	}
}

func TestUserRepo_LoginTokenLifecycle(t *testing.T) {
	s := newTestStore(t)
	repo := s.Users()
	ctx := context.Background()

	user, err := repo.GetOrCreateByEmail(ctx, "learner@example.com")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	again, err := repo.GetOrCreateByEmail(ctx, "learner@example.com")
	if err != nil {
		t.Fatalf("get or create again: %v", err)
	}
	if again.ID != user.ID {
		t.Fatalf("expected same user, got %s and %s", user.ID, again.ID)
	}

	if err := repo.CreateLoginToken(ctx, user.ID, "tok-valid", time.Now().Add(15*time.Minute)); err != nil {
		t.Fatalf("create token: %v", err)
	}

	got, err := repo.ConsumeLoginToken(ctx, "tok-valid")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
	if got.LastLoginAt == nil {
		t.Fatal("expected last_login_at to be set")
	}

	if _, err := repo.ConsumeLoginToken(ctx, "tok-valid"); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed, got %v", err)
	}

	if _, err := repo.ConsumeLoginToken(ctx, "tok-missing"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}

	if err := repo.CreateLoginToken(ctx, user.ID, "tok-stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("create stale token: %v", err)
	}
	if _, err := repo.ConsumeLoginToken(ctx, "tok-stale"); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestUserRepo_Sessions(t *testing.T) {
	s := newTestStore(t)
	repo := s.Users()
	ctx := context.Background()

	user, err := repo.GetOrCreateByEmail(ctx, "learner@example.com")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	if _, err := repo.CreateSession(ctx, user.ID, "sess-live", time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("create session: %v", err)
	}

	sess, err := repo.FindSession(ctx, "sess-live")
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if sess.User == nil || sess.User.Email != "learner@example.com" {
		t.Fatalf("user not preloaded: %+v", sess)
	}

	if _, err := repo.CreateSession(ctx, user.ID, "sess-stale", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("create stale session: %v", err)
	}
	if _, err := repo.FindSession(ctx, "sess-stale"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for expired session, got %v", err)
	}

	if err := repo.DeleteSession(ctx, "sess-live"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, err := repo.FindSession(ctx, "sess-live"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/pamelaahill/inspiration-server/internal/apperror"
	"github.com/pamelaahill/inspiration-server/internal/model"
)

// =========================================================================
// MOCKS
// =========================================================================
//
// Hand-written fakes for the three dependencies the service orchestrates.
// They store state in memory and record calls so tests can assert on the
// orchestration order and the exact values handed across layer boundaries.

type mockInspirationRepo struct {
	inspirations map[int64]*model.Inspiration
	nextID       int64

	createCalls    int
	replacedTitles []string
	replaceTagsErr error
	imagePathByID  map[int64]string
	failCreateWith error
}

func newMockInspirationRepo() *mockInspirationRepo {
	return &mockInspirationRepo{
		inspirations:  make(map[int64]*model.Inspiration),
		imagePathByID: make(map[int64]string),
	}
}

func (m *mockInspirationRepo) Create(_ context.Context, userID int64, imagePath string) (*model.Inspiration, error) {
	m.createCalls++
	if m.failCreateWith != nil {
		return nil, m.failCreateWith
	}
	m.nextID++
	insp := &model.Inspiration{
		ID:        m.nextID,
		UserID:    userID,
		ImagePath: imagePath,
		Tags:      []model.Tag{},
		CreatedAt: 1700000000000,
	}
	m.inspirations[insp.ID] = insp
	m.imagePathByID[insp.ID] = imagePath
	return insp, nil
}

func (m *mockInspirationRepo) GetByID(_ context.Context, id int64) (*model.Inspiration, error) {
	insp, ok := m.inspirations[id]
	if !ok {
		return nil, apperror.NotFound("inspiration", id)
	}
	return insp, nil
}

func (m *mockInspirationRepo) ImagePath(_ context.Context, id int64) (string, error) {
	path, ok := m.imagePathByID[id]
	if !ok {
		return "", apperror.NotFound("inspiration", id)
	}
	return path, nil
}

func (m *mockInspirationRepo) ListByUser(_ context.Context, userID int64) ([]model.Inspiration, error) {
	result := []model.Inspiration{}
	for _, insp := range m.inspirations {
		if insp.UserID == userID {
			result = append(result, *insp)
		}
	}
	return result, nil
}

func (m *mockInspirationRepo) ListByTag(_ context.Context, tagID int64) ([]model.Inspiration, error) {
	result := []model.Inspiration{}
	for _, insp := range m.inspirations {
		for _, tag := range insp.Tags {
			if tag.ID == tagID {
				result = append(result, *insp)
				break
			}
		}
	}
	return result, nil
}

func (m *mockInspirationRepo) ReplaceTags(_ context.Context, id int64, titles []string) (*model.Inspiration, error) {
	m.replacedTitles = titles
	if m.replaceTagsErr != nil {
		return nil, m.replaceTagsErr
	}
	insp, ok := m.inspirations[id]
	if !ok {
		return nil, apperror.NotFound("inspiration", id)
	}
	insp.Tags = make([]model.Tag, 0, len(titles))
	for i, title := range titles {
		insp.Tags = append(insp.Tags, model.Tag{ID: int64(i + 1), Title: title})
	}
	return insp, nil
}

type mockGenerator struct {
	url         string
	content     []byte
	generateErr error
	fetchErr    error
	fetchedURL  string
}

func (m *mockGenerator) Generate(_ context.Context) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.url, nil
}

func (m *mockGenerator) FetchImage(_ context.Context, imageURL string) ([]byte, error) {
	m.fetchedURL = imageURL
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.content, nil
}

type mockImageStore struct {
	savedExt     string
	savedContent []byte
	saveCalls    int
	saveErr      error
	resolveErr   error
}

func (m *mockImageStore) Save(fileExtension string, content []byte) (string, error) {
	m.saveCalls++
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.savedExt = fileExtension
	m.savedContent = content
	return fmt.Sprintf("images/mock-%d.%s", m.saveCalls, fileExtension), nil
}

func (m *mockImageStore) Resolve(ref string) (string, error) {
	if m.resolveErr != nil {
		return "", m.resolveErr
	}
	return "/resolved/" + ref, nil
}

func newTestService(t *testing.T) (*InspirationService, *mockInspirationRepo, *mockGenerator, *mockImageStore) {
	t.Helper()
	repo := newMockInspirationRepo()
	gen := &mockGenerator{
		url:     "https://generated.example.com/a/b.jpg",
		content: []byte("image bytes"),
	}
	store := &mockImageStore{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewInspirationService(repo, gen, store, logger), repo, gen, store
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate(t *testing.T) {
	svc, repo, gen, store := newTestService(t)

	insp, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if insp.UserID != 1 {
		t.Errorf("UserID = %d, want 1", insp.UserID)
	}
	if len(insp.Tags) != 0 {
		t.Errorf("fresh inspiration has tags %v", insp.Tags)
	}
	if gen.fetchedURL != gen.url {
		t.Errorf("fetched %q, want the generated URL %q", gen.fetchedURL, gen.url)
	}
	// Extension comes from the generated URL's trailing segment.
	if store.savedExt != "jpg" {
		t.Errorf("saved extension = %q, want %q", store.savedExt, "jpg")
	}
	if string(store.savedContent) != "image bytes" {
		t.Errorf("saved content = %q, want %q", store.savedContent, "image bytes")
	}
	if repo.createCalls != 1 {
		t.Errorf("Create called %d times, want 1", repo.createCalls)
	}
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	svc, repo, gen, store := newTestService(t)
	gen.generateErr = errors.New("upstream down")

	_, err := svc.Generate(context.Background(), 1)
	if err == nil {
		t.Fatal("Generate() should fail when the generator fails")
	}
	if store.saveCalls != 0 {
		t.Error("nothing should be stored when generation fails")
	}
	if repo.createCalls != 0 {
		t.Error("no row should be created when generation fails")
	}
}

func TestGenerate_StorageFailureBeforeInsert(t *testing.T) {
	svc, repo, _, store := newTestService(t)
	store.saveErr = apperror.Storage("disk full", errors.New("ENOSPC"))

	_, err := svc.Generate(context.Background(), 1)
	if !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("Generate() error = %v, want ErrStorage", err)
	}

	// Store-before-insert ordering: a failed store must leave no row behind.
	if repo.createCalls != 0 {
		t.Errorf("Create called %d times after storage failure, want 0", repo.createCalls)
	}
}

func TestGenerate_InsertFailure(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.failCreateWith = errors.New("database unreachable")

	_, err := svc.Generate(context.Background(), 1)
	if err == nil {
		t.Fatal("Generate() should surface the persistence failure")
	}
}

// =========================================================================
// IMAGE PATH TESTS
// =========================================================================

func TestImagePath(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	insp, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	path, err := svc.ImagePath(context.Background(), insp.ID)
	if err != nil {
		t.Fatalf("ImagePath() error = %v", err)
	}
	if path != "/resolved/"+insp.ImagePath {
		t.Errorf("ImagePath() = %q, want resolved ref", path)
	}
}

func TestImagePath_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ImagePath(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ImagePath() error = %v, want ErrNotFound", err)
	}
}

func TestImagePath_StorageFailure(t *testing.T) {
	svc, _, _, store := newTestService(t)

	insp, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	store.resolveErr = apperror.Storage("file vanished", os.ErrNotExist)

	_, err = svc.ImagePath(context.Background(), insp.ID)
	if !errors.Is(err, apperror.ErrStorage) {
		t.Errorf("ImagePath() error = %v, want ErrStorage", err)
	}
}

// =========================================================================
// REPLACE TAGS TESTS
// =========================================================================

func TestReplaceTags_TrimsAndDropsEmptyTitles(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	insp, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	_, err = svc.ReplaceTags(context.Background(), insp.ID, []string{" funny ", "", "  ", "deep"})
	if err != nil {
		t.Fatalf("ReplaceTags() error = %v", err)
	}

	want := []string{"funny", "deep"}
	if len(repo.replacedTitles) != len(want) {
		t.Fatalf("repo received titles %v, want %v", repo.replacedTitles, want)
	}
	for i := range want {
		if repo.replacedTitles[i] != want[i] {
			t.Errorf("title[%d] = %q, want %q", i, repo.replacedTitles[i], want[i])
		}
	}
}

func TestReplaceTags_EmptyListIsValid(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	insp, err := svc.Generate(context.Background(), 1)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	updated, err := svc.ReplaceTags(context.Background(), insp.ID, []string{})
	if err != nil {
		t.Fatalf("ReplaceTags([]) error = %v", err)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("tags after clear = %v, want none", updated.Tags)
	}
}

func TestReplaceTags_RejectsOverlongTitle(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	long := make([]byte, MaxTagTitleLength+1)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.ReplaceTags(context.Background(), 1, []string{string(long)})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("ReplaceTags() error = %v, want ErrValidation", err)
	}
	if repo.replacedTitles != nil {
		t.Error("repository must not be called for an invalid payload")
	}
}

func TestReplaceTags_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.ReplaceTags(context.Background(), 999, []string{"funny"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ReplaceTags() error = %v, want ErrNotFound", err)
	}
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pamelaahill/inspiration-server/internal/model"
	"github.com/pamelaahill/inspiration-server/internal/repository"
)

// TagService exposes read access to the tag vocabulary. Writes happen only
// through InspirationService.ReplaceTags — the vocabulary grows as a side
// effect of tagging and is never edited directly.
type TagService struct {
	repo   repository.TagRepository
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(repo repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{
		repo:   repo,
		logger: logger,
	}
}

// Search returns tags whose title contains the given text. An empty search
// string lists the whole vocabulary.
func (s *TagService) Search(ctx context.Context, title string) ([]model.Tag, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.List(ctx)
	}

	// Wrap in % for substring semantics; callers pass plain text, not SQL
	// patterns.
	tags, err := s.repo.FindByTitlePattern(ctx, "%"+title+"%")
	if err != nil {
		s.logger.Error("tag search failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("searching tags: %w", err)
	}
	return tags, nil
}

// List returns every tag in the vocabulary.
func (s *TagService) List(ctx context.Context) ([]model.Tag, error) {
	tags, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("tag listing failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

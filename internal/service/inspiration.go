// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer)  → validates, enforces ordering, orchestrates
//	Repository (Data layer)   → reads/writes the database
//
// Services accept interfaces for everything they depend on (repositories, the
// generator client, the image store), so tests substitute in-memory fakes and
// no service code knows about HTTP, SQL, or the real InspiroBot endpoint.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pamelaahill/inspiration-server/internal/apperror"
	"github.com/pamelaahill/inspiration-server/internal/inspirobot"
	"github.com/pamelaahill/inspiration-server/internal/model"
	"github.com/pamelaahill/inspiration-server/internal/repository"
)

// MaxTagTitleLength bounds a single tag title. Matches the column width the
// original schema used.
const MaxTagTitleLength = 1024

// Generator supplies a source image URL and the image bytes behind it.
// Satisfied by *inspirobot.Client; tests plug in a fake.
type Generator interface {
	Generate(ctx context.Context) (string, error)
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)
}

// ImageStore persists image content and resolves stored refs back to
// readable paths. Satisfied by *imagestore.Store.
type ImageStore interface {
	Save(fileExtension string, content []byte) (string, error)
	Resolve(ref string) (string, error)
}

// InspirationService orchestrates generation, image storage, and persistence
// for inspiration records.
type InspirationService struct {
	repo      repository.InspirationRepository
	generator Generator
	images    ImageStore
	logger    *slog.Logger
}

// NewInspirationService creates an InspirationService.
func NewInspirationService(
	repo repository.InspirationRepository,
	generator Generator,
	images ImageStore,
	logger *slog.Logger,
) *InspirationService {
	return &InspirationService{
		repo:      repo,
		generator: generator,
		images:    images,
		logger:    logger,
	}
}

// Generate produces a new inspiration for userID: fetch an image URL from the
// generator, download the bytes, store them, then insert the row.
//
// ORDERING CONTRACT:
// The image file is written strictly before the database insert. If storage
// fails, no row exists; if the insert fails, the worst case is an orphan file
// in the content directory, never a row pointing at missing content.
func (s *InspirationService) Generate(ctx context.Context, userID int64) (*model.Inspiration, error) {
	imageURL, err := s.generator.Generate(ctx)
	if err != nil {
		s.logger.Error("generation failed",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("generating inspiration: %w", err)
	}

	content, err := s.generator.FetchImage(ctx, imageURL)
	if err != nil {
		s.logger.Error("image download failed",
			slog.String("url", imageURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("downloading inspiration image: %w", err)
	}

	ref, err := s.images.Save(inspirobot.Extension(imageURL), content)
	if err != nil {
		s.logger.Error("image store failed",
			slog.String("url", imageURL),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("storing inspiration image: %w", err)
	}

	insp, err := s.repo.Create(ctx, userID, ref)
	if err != nil {
		s.logger.Error("failed to create inspiration",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating inspiration: %w", err)
	}

	s.logger.Info("inspiration created",
		slog.Int64("id", insp.ID),
		slog.Int64("userId", userID),
		slog.String("image", ref),
	)

	return insp, nil
}

// GetByID returns the inspiration with its current tag set.
func (s *InspirationService) GetByID(ctx context.Context, id int64) (*model.Inspiration, error) {
	return s.repo.GetByID(ctx, id)
}

// ImagePath resolves the readable image file path for an inspiration.
// NotFound when the inspiration does not exist; ErrStorage when the row
// exists but the file does not resolve.
func (s *InspirationService) ImagePath(ctx context.Context, id int64) (string, error) {
	ref, err := s.repo.ImagePath(ctx, id)
	if err != nil {
		return "", err
	}
	path, err := s.images.Resolve(ref)
	if err != nil {
		s.logger.Error("stored image did not resolve",
			slog.Int64("id", id),
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	return path, nil
}

// ListByUser returns every inspiration owned by userID.
func (s *InspirationService) ListByUser(ctx context.Context, userID int64) ([]model.Inspiration, error) {
	inspirations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list inspirations",
			slog.Int64("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing inspirations: %w", err)
	}
	return inspirations, nil
}

// ListByTag returns every inspiration carrying the tag.
func (s *InspirationService) ListByTag(ctx context.Context, tagID int64) ([]model.Inspiration, error) {
	inspirations, err := s.repo.ListByTag(ctx, tagID)
	if err != nil {
		s.logger.Error("failed to list inspirations by tag",
			slog.Int64("tagId", tagID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing inspirations by tag: %w", err)
	}
	return inspirations, nil
}

// ReplaceTags validates the submitted titles and atomically replaces the
// inspiration's tag set with them.
//
// Titles are trimmed; entries that are empty after trimming are dropped
// rather than rejected, so a sloppy payload like ["funny", " "] still means
// "tag it funny". An empty result is valid and clears the tag set. Duplicate
// dedup by tag identity happens in the repository, inside the transaction.
func (s *InspirationService) ReplaceTags(ctx context.Context, id int64, titles []string) (*model.Inspiration, error) {
	cleaned := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if len(title) > MaxTagTitleLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tag titles must be %d characters or less", MaxTagTitleLength))
		}
		cleaned = append(cleaned, title)
	}

	insp, err := s.repo.ReplaceTags(ctx, id, cleaned)
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspiration tags replaced",
		slog.Int64("id", id),
		slog.Int("tagCount", len(insp.Tags)),
	)

	return insp, nil
}

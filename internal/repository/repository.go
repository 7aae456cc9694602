// Package repository declares the storage interfaces the service layer
// depends on.
//
// Services receive these interfaces, not the concrete sqlite types, so tests
// can substitute in-memory fakes and the storage backend can change without
// touching business logic.
package repository

import (
	"context"

	"github.com/pamelaahill/inspiration-server/internal/model"
)

// InspirationRepository persists inspiration records and their tag
// associations.
//
// Hydration rule: every returned Inspiration carries its current tag set,
// re-read from the association table at query time. There is no cache, so tag
// lists are never stale relative to the last ReplaceTags.
type InspirationRepository interface {
	// Create inserts a record with zero tags and returns it fully hydrated.
	// The image content behind imagePath must already exist; see imagestore.
	Create(ctx context.Context, userID int64, imagePath string) (*model.Inspiration, error)

	// GetByID returns the record with its tag set, or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.Inspiration, error)

	// ImagePath returns the stored image ref for the inspiration, or
	// ErrNotFound if the inspiration does not exist.
	ImagePath(ctx context.Context, id int64) (string, error)

	// ListByUser returns every inspiration owned by the user, hydrated.
	// No matches is an empty slice, not an error.
	ListByUser(ctx context.Context, userID int64) ([]model.Inspiration, error)

	// ListByTag returns every inspiration currently associated with the tag.
	// An unknown tag id yields an empty slice.
	ListByTag(ctx context.Context, tagID int64) ([]model.Inspiration, error)

	// ReplaceTags atomically replaces the inspiration's tag associations with
	// exactly the given titles, creating missing tags on the way. Duplicate
	// titles collapse; an empty list clears all tags. Returns the re-hydrated
	// record, or ErrNotFound if the inspiration does not exist.
	ReplaceTags(ctx context.Context, id int64, titles []string) (*model.Inspiration, error)
}

// TagRepository manages the append-only tag vocabulary.
type TagRepository interface {
	// GetOrCreate resolves every distinct title to a Tag, inserting rows for
	// titles seen for the first time. Safe to call with existing titles.
	GetOrCreate(ctx context.Context, titles []string) (map[string]model.Tag, error)

	// FindByTitle returns the tag with the exact title, or ErrNotFound.
	FindByTitle(ctx context.Context, title string) (*model.Tag, error)

	// FindByTitlePattern returns tags whose title matches the SQL LIKE
	// pattern. No matches is an empty slice, never an error.
	FindByTitlePattern(ctx context.Context, pattern string) ([]model.Tag, error)

	// List returns every tag.
	List(ctx context.Context) ([]model.Tag, error)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pamelaahill/inspiration-server/internal/apperror"
	"github.com/pamelaahill/inspiration-server/internal/model"
	"github.com/pamelaahill/inspiration-server/internal/repository"
)

// Compile-time check that *DB satisfies the interface.
var _ repository.TagRepository = (*DB)(nil)

// GetOrCreate resolves every distinct title to a Tag row, inserting rows for
// titles that do not exist yet. The returned map has one entry per distinct
// input title.
//
// IDEMPOTENT UPSERT:
// `INSERT ... ON CONFLICT(title) DO NOTHING` leans on the UNIQUE index on
// tags.title. A plain check-then-insert has a race: two concurrent calls can
// both see the title missing and both insert. With the upsert, the loser of
// the race no-ops and the follow-up SELECT returns the winner's row, so the
// same title can never yield two ids.
func (db *DB) GetOrCreate(ctx context.Context, titles []string) (map[string]model.Tag, error) {
	return getOrCreateTags(ctx, db.conn, titles)
}

// getOrCreateTags is the transaction-agnostic implementation. ReplaceTags
// calls it with its own *sql.Tx so lazy tag creation commits or rolls back
// together with the association replace.
func getOrCreateTags(ctx context.Context, q querier, titles []string) (map[string]model.Tag, error) {
	resolved := make(map[string]model.Tag, len(titles))

	for _, title := range titles {
		if _, ok := resolved[title]; ok {
			continue // duplicate input title
		}

		if _, err := q.ExecContext(ctx,
			`INSERT INTO tags (title) VALUES (?) ON CONFLICT(title) DO NOTHING`,
			title,
		); err != nil {
			return nil, fmt.Errorf("sqlite: creating tag %q: %w", title, err)
		}

		var tag model.Tag
		if err := q.QueryRowContext(ctx,
			`SELECT id, title FROM tags WHERE title = ?`,
			title,
		).Scan(&tag.ID, &tag.Title); err != nil {
			return nil, fmt.Errorf("sqlite: resolving tag %q: %w", title, err)
		}

		resolved[title] = tag
	}

	return resolved, nil
}

// FindByTitle returns the tag with exactly this title. At most one row can
// match because the title column is unique.
func (db *DB) FindByTitle(ctx context.Context, title string) (*model.Tag, error) {
	var tag model.Tag
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title FROM tags WHERE title = ?`,
		title,
	).Scan(&tag.ID, &tag.Title)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("tag not found with title %q", title),
			}
		}
		return nil, fmt.Errorf("sqlite: finding tag %q: %w", title, err)
	}
	return &tag, nil
}

// FindByTitlePattern returns every tag whose title matches the SQL LIKE
// pattern (the caller supplies any % wildcards). No matches is an empty
// slice, never an error.
func (db *DB) FindByTitlePattern(ctx context.Context, pattern string) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title FROM tags WHERE title LIKE ? ORDER BY id`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching tags %q: %w", pattern, err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// List returns every tag in the vocabulary.
func (db *DB) List(ctx context.Context) ([]model.Tag, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, title FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

func scanTags(rows *sql.Rows) ([]model.Tag, error) {
	tags := []model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Title); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return tags, nil
}

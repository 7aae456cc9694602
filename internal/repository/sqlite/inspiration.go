package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pamelaahill/inspiration-server/internal/apperror"
	"github.com/pamelaahill/inspiration-server/internal/model"
	"github.com/pamelaahill/inspiration-server/internal/repository"
)

// Compile-time check that *DB satisfies the interface.
var _ repository.InspirationRepository = (*DB)(nil)

// Create inserts an inspiration row with zero tags and returns the hydrated
// record. The image file behind imagePath must already exist — the service
// layer stores content first, so a failed store never leaves an orphan row.
func (db *DB) Create(ctx context.Context, userID int64, imagePath string) (*model.Inspiration, error) {
	createdAt := time.Now().UnixMilli()

	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO inspirations (user_id, image_path, created_at) VALUES (?, ?, ?)`,
		userID, imagePath, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: creating inspiration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading inspiration id: %w", err)
	}

	return db.getByID(ctx, db.conn, id)
}

// GetByID returns the inspiration with its current tag set, or ErrNotFound.
func (db *DB) GetByID(ctx context.Context, id int64) (*model.Inspiration, error) {
	return db.getByID(ctx, db.conn, id)
}

// ImagePath returns the stored image ref without hydrating the full record.
func (db *DB) ImagePath(ctx context.Context, id int64) (string, error) {
	var path string
	err := db.conn.QueryRowContext(ctx,
		`SELECT image_path FROM inspirations WHERE id = ?`,
		id,
	).Scan(&path)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", apperror.NotFound("inspiration", id)
		}
		return "", fmt.Errorf("sqlite: getting image path for inspiration %d: %w", id, err)
	}
	return path, nil
}

// ListByUser returns every inspiration owned by the user, hydrated.
func (db *DB) ListByUser(ctx context.Context, userID int64) ([]model.Inspiration, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, image_path, created_at
		 FROM inspirations
		 WHERE user_id = ?
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing inspirations for user %d: %w", userID, err)
	}
	defer rows.Close()

	return db.scanInspirations(ctx, rows)
}

// ListByTag returns every inspiration currently associated with the tag.
// An unknown tag id simply matches no association rows and yields an empty
// slice.
func (db *DB) ListByTag(ctx context.Context, tagID int64) ([]model.Inspiration, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT i.id, i.user_id, i.image_path, i.created_at
		 FROM inspirations i
		 INNER JOIN inspiration_tags it ON it.inspiration_id = i.id
		 WHERE it.tag_id = ?
		 ORDER BY i.id`,
		tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing inspirations for tag %d: %w", tagID, err)
	}
	defer rows.Close()

	return db.scanInspirations(ctx, rows)
}

// ReplaceTags atomically replaces the inspiration's tag associations with
// exactly the given titles.
//
// THE RECONCILIATION, ONE TRANSACTION:
//  1. Confirm the parent inspiration exists — reconciling a nonexistent id is
//     reported as NotFound up front instead of surfacing as a foreign-key
//     violation on insert.
//  2. Get-or-create every distinct title. Creation happens inside this
//     transaction, so a failure later never commits half-created vocabulary.
//  3. Delete all existing association rows for the inspiration.
//  4. Insert one row per distinct tag id. Duplicate input titles were already
//     collapsed in step 2; iterating the resolved map cannot insert the same
//     pair twice.
//
// An empty titles list runs the same steps and leaves the inspiration with no
// tags. Tag rows themselves are never deleted, so other inspirations keep
// their associations.
//
// Concurrent ReplaceTags calls for the same id are last-writer-wins: SQLite
// serializes the two transactions and the later commit fully supersedes the
// earlier delete/insert.
func (db *DB) ReplaceTags(ctx context.Context, id int64, titles []string) (*model.Inspiration, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning tag replace: %w", err)
	}
	// Rollback is a no-op after Commit; the defer covers every error path.
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inspirations WHERE id = ?`, id,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking inspiration %d: %w", id, err)
	}
	if exists == 0 {
		return nil, apperror.NotFound("inspiration", id)
	}

	resolved, err := getOrCreateTags(ctx, tx, titles)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM inspiration_tags WHERE inspiration_id = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("sqlite: clearing tags for inspiration %d: %w", id, err)
	}

	for _, tag := range resolved {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inspiration_tags (inspiration_id, tag_id) VALUES (?, ?)`,
			id, tag.ID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: tagging inspiration %d with tag %d: %w", id, tag.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing tag replace: %w", err)
	}

	return db.getByID(ctx, db.conn, id)
}

// getByID loads one inspiration and hydrates its tag set.
func (db *DB) getByID(ctx context.Context, q querier, id int64) (*model.Inspiration, error) {
	var insp model.Inspiration
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, image_path, created_at FROM inspirations WHERE id = ?`,
		id,
	).Scan(&insp.ID, &insp.UserID, &insp.ImagePath, &insp.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("inspiration", id)
		}
		return nil, fmt.Errorf("sqlite: getting inspiration %d: %w", id, err)
	}

	tags, err := db.tagsFor(ctx, q, id)
	if err != nil {
		return nil, err
	}
	insp.Tags = tags

	return &insp, nil
}

// tagsFor re-queries the association join for one inspiration. Hydration
// always goes back to the tables, never a cache, so a record read after
// ReplaceTags reflects exactly the committed associations.
func (db *DB) tagsFor(ctx context.Context, q querier, inspirationID int64) ([]model.Tag, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT t.id, t.title
		 FROM tags t
		 INNER JOIN inspiration_tags it ON it.tag_id = t.id
		 WHERE it.inspiration_id = ?
		 ORDER BY t.id`,
		inspirationID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags for inspiration %d: %w", inspirationID, err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// scanInspirations reads inspiration rows and hydrates each one's tags.
// The tag lookups run after rows is fully drained because a querier may not
// support overlapping queries on one connection.
func (db *DB) scanInspirations(ctx context.Context, rows *sql.Rows) ([]model.Inspiration, error) {
	inspirations := []model.Inspiration{}
	for rows.Next() {
		var insp model.Inspiration
		if err := rows.Scan(&insp.ID, &insp.UserID, &insp.ImagePath, &insp.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning inspiration row: %w", err)
		}
		inspirations = append(inspirations, insp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating inspirations: %w", err)
	}
	rows.Close()

	for i := range inspirations {
		tags, err := db.tagsFor(ctx, db.conn, inspirations[i].ID)
		if err != nil {
			return nil, err
		}
		inspirations[i].Tags = tags
	}

	return inspirations, nil
}

package model

// Tag is a named label in a shared, append-only vocabulary. Tags are created
// lazily the first time a title is used and are never mutated or deleted, so
// an association from one inspiration never disappears because another
// inspiration dropped the same tag.
type Tag struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

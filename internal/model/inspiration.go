// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with no behaviour
// attached, shared by the repository, service, and handler layers.
package model

// Inspiration represents one generated image saved for a user, together with
// the free-form tags attached to it.
//
// The `json:"..."` tags tell Go's encoding/json package how to serialize this
// struct for API responses.
//
// WHY CreatedAt int64 AND NOT time.Time?
// The creation instant is stored and served as epoch milliseconds. Keeping it
// as an int64 end to end (database column, struct field, JSON number) avoids a
// lossy round-trip through time.Time formatting, and clients that sort by it
// get a plain numeric comparison.
//
// Tags is never nil after hydration: a freshly created inspiration carries an
// empty slice, which serializes as [] rather than null.
type Inspiration struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	ImagePath string `json:"imagePath"`
	Tags      []Tag  `json:"tags"`
	CreatedAt int64  `json:"createdAt"` // epoch milliseconds, set at insert time
}

// Package entity holds the registry domain model.
package entity

import "time"

// Crate is a published package, version-independent metadata plus the
// aggregate download count.
type Crate struct {
	ID          int64
	Name        string
	Description string
	Downloads   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Version is one published release of a crate.
type Version struct {
	ID        int64
	CrateID   int64
	Num       string
	Checksum  string
	Size      int64
	Downloads int64
	CreatedAt time.Time
}

// Keyword is a lowercase label crates can be tagged with. CratesCnt is
// the number of crates currently linked to it.
type Keyword struct {
	ID        int64
	Keyword   string
	CratesCnt int64
	CreatedAt time.Time
}

// PublishData carries everything one publish records in a single
// transaction.
type PublishData struct {
	CrateID     int64
	VersionID   int64
	Name        string
	Description string
	Num         string
	Checksum    string
	Size        int64
	// Keywords are already lowercased and validated.
	Keywords []string
	// KeywordIDs supplies ids for keywords that do not exist yet, one
	// candidate per keyword.
	KeywordIDs []int64
}

// CrateDetail aggregates what the crate page shows.
type CrateDetail struct {
	Crate    Crate
	Versions []Version
	Keywords []Keyword
}

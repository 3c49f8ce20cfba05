package inbound

import "time"

// PublishMetadata is the JSON block at the head of a publish payload.
// Field names follow the publishing tool's wire format.
type PublishMetadata struct {
	Name        string   `json:"name"`
	Vers        string   `json:"vers"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Readme      string   `json:"readme"`
}

type CrateItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Downloads   int64     `json:"downloads"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PublishResponse struct {
	Crate    CrateItem `json:"crate"`
	Version  string    `json:"version"`
	Checksum string    `json:"checksum"`
}

func (PublishResponse) Message() string {
	return "Crate version has been published."
}

type VersionItem struct {
	Num       string    `json:"num"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	Downloads int64     `json:"downloads"`
	CreatedAt time.Time `json:"created_at"`
}

type CrateDetailResponse struct {
	Crate    CrateItem     `json:"crate"`
	Versions []VersionItem `json:"versions"`
	Keywords []string      `json:"keywords"`
}

type KeywordItem struct {
	Keyword   string    `json:"keyword"`
	CratesCnt int64     `json:"crates_cnt"`
	CreatedAt time.Time `json:"created_at"`
}

type KeywordListResponse struct {
	Keywords []KeywordItem `json:"keywords"`
	Total    int64         `json:"total"`
}

func (r KeywordListResponse) Meta() map[string]any {
	return map[string]any{"total": r.Total}
}

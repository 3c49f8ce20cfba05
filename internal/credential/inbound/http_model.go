package inbound

import "time"

type TokenCreateRequest struct {
	Name string `json:"name"`
}

type TokenCreateResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

func (TokenCreateResponse) Message() string {
	return "Token created. Save it now, it will not be shown again."
}

type TokenItem struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type TokenListResponse struct {
	Tokens []TokenItem `json:"tokens"`
}

type TokenDeleteResponse struct{}

func (TokenDeleteResponse) Message() string {
	return "Token has been revoked."
}

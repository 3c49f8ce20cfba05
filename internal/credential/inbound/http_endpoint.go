package inbound

import (
	"github.com/cratebin/cratebin/internal/credential/usecase"
	"github.com/cratebin/cratebin/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for API token management.
type HTTPEndpoint struct {
	uc uc
}

// TokenCreate issues a new API token. The response is the only place the
// plaintext credential is ever disclosed.
func (h *HTTPEndpoint) TokenCreate(r *router.Request) (any, error) {
	var req TokenCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TokenCreate(r.Context(), usecase.TokenCreateInput{
		Name: req.Name,
	})
	if err != nil {
		return nil, err
	}

	return TokenCreateResponse{
		ID:        resp.Token.ID,
		Name:      resp.Token.Name,
		Token:     resp.Plaintext,
		CreatedAt: resp.Token.CreatedAt,
	}, nil
}

// TokenList returns the caller's active tokens, digests excluded.
func (h *HTTPEndpoint) TokenList(r *router.Request) (any, error) {
	resp, err := h.uc.TokenList(r.Context())
	if err != nil {
		return nil, err
	}

	tokens := make([]TokenItem, 0, len(resp.Tokens))
	for _, t := range resp.Tokens {
		tokens = append(tokens, TokenItem{
			ID:         t.ID,
			Name:       t.Name,
			LastUsedAt: t.LastUsedAt,
			CreatedAt:  t.CreatedAt,
		})
	}

	return TokenListResponse{Tokens: tokens}, nil
}

// TokenDelete revokes one of the caller's tokens.
func (h *HTTPEndpoint) TokenDelete(r *router.Request) (any, error) {
	id, err := r.GetParamInt64("id")
	if err != nil {
		return nil, err
	}

	if err := h.uc.TokenDelete(r.Context(), usecase.TokenDeleteInput{ID: id}); err != nil {
		return nil, err
	}

	return TokenDeleteResponse{}, nil
}

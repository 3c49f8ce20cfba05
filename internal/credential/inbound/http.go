package inbound

import (
	"context"

	"github.com/cratebin/cratebin/internal/credential/usecase"
	"github.com/cratebin/cratebin/internal/pkg/router"
)

type uc interface {
	TokenCreate(ctx context.Context, in usecase.TokenCreateInput) (*usecase.TokenCreateOutput, error)
	TokenList(ctx context.Context) (*usecase.TokenListOutput, error)
	TokenDelete(ctx context.Context, in usecase.TokenDeleteInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// API Token Management (need authenticated)
	r.GET("/api/v1/me/tokens", end.TokenList)
	r.POST("/api/v1/me/tokens", end.TokenCreate)
	r.DELETE("/api/v1/me/tokens/:id", end.TokenDelete)
}

package inbound

import (
	"context"

	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/registry/usecase"
)

type uc interface {
	Publish(ctx context.Context, in usecase.PublishInput) (*usecase.PublishOutput, error)
	Download(ctx context.Context, in usecase.DownloadInput) (*usecase.DownloadOutput, error)
	CrateDetail(ctx context.Context, in usecase.CrateDetailInput) (*usecase.CrateDetailOutput, error)
	KeywordList(ctx context.Context, in usecase.KeywordListInput) (*usecase.KeywordListOutput, error)
	KeywordDetail(ctx context.Context, in usecase.KeywordDetailInput) (*usecase.KeywordDetailOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Publishing (need authenticated)
	r.PUT("/api/v1/crates/new", end.Publish)

	// Crate reads
	r.GET("/api/v1/crates/:name", end.CrateDetail)
	r.GET("/api/v1/crates/:name/:version/download", end.Download)

	// Keywords
	r.GET("/api/v1/keywords", end.KeywordList)
	r.GET("/api/v1/keywords/:keyword", end.KeywordDetail)
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

type (
	CrateDetailInput struct {
		Name string `validate:"required,cratename"`
	}

	CrateDetailOutput struct {
		Detail entity.CrateDetail
	}
)

func (s *Usecase) CrateDetail(ctx context.Context, in CrateDetailInput) (*CrateDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "CrateDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	crate, err := s.repoDB.GetCrateByName(ctx, in.Name)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("crate not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get crate", "crate", in.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	versions, err := s.repoDB.GetVersionsByCrateID(ctx, crate.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get versions", "crate", in.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	keywords, err := s.repoDB.GetKeywordsByCrateID(ctx, crate.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get keywords", "crate", in.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CrateDetailOutput{Detail: entity.CrateDetail{
		Crate:    *crate,
		Versions: versions,
		Keywords: keywords,
	}}, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/validator"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type (
	KeywordListInput struct {
		Page    int32 `validate:"gte=0"`
		PerPage int32 `validate:"gte=0,lte=100"`
	}

	KeywordListOutput struct {
		Keywords []entity.Keyword
		Total    int64
	}
)

func (s *Usecase) KeywordList(ctx context.Context, in KeywordListInput) (*KeywordListOutput, error) {
	ctx, span := s.startSpan(ctx, "KeywordList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	perPage := in.PerPage
	if perPage == 0 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	page := in.Page
	if page < 1 {
		page = 1
	}

	keywords, total, err := s.repoDB.GetKeywordList(ctx, perPage, (page-1)*perPage)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get keyword list", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &KeywordListOutput{Keywords: keywords, Total: total}, nil
}

type (
	KeywordDetailInput struct {
		Keyword string `validate:"required,max=20,keyword"`
	}

	KeywordDetailOutput struct {
		Keyword entity.Keyword
	}
)

func (s *Usecase) KeywordDetail(ctx context.Context, in KeywordDetailInput) (*KeywordDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "KeywordDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	keyword, err := s.repoDB.GetKeywordByName(ctx, validator.LowercaseKeyword(in.Keyword))
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("keyword not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get keyword", "keyword", in.Keyword, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &KeywordDetailOutput{Keyword: *keyword}, nil
}

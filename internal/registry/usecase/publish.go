package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/storage"
	"github.com/cratebin/cratebin/internal/pkg/validator"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

// maxKeywords bounds how many keywords a crate may declare.
const maxKeywords = 5

type (
	PublishInput struct {
		Name        string   `validate:"required,cratename"`
		Version     string   `validate:"required,max=64"`
		Description string   `validate:"max=1000"`
		Keywords    []string `validate:"max=5,dive,required,max=20,keyword"`
		Archive     io.Reader
		ArchiveSize int64
		ReadmeHTML  string
	}

	PublishOutput struct {
		Crate    entity.Crate
		Version  entity.Version
		Checksum string
	}
)

// Publish stores the version archive, records the release and its
// keywords in one transaction, and announces it to the broker. The
// archive lands in the object store before the database row exists, so a
// failed publish can leave an orphan object but never a dangling row.
func (s *Usecase) Publish(ctx context.Context, in PublishInput) (*PublishOutput, error) {
	ctx, span := s.startSpan(ctx, "Publish")
	defer span.End()

	au, ok := router.GetAuth(ctx)
	if !ok {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}
	if in.Archive == nil || in.ArchiveSize <= 0 {
		return nil, goerror.NewInvalidFormat("Missing crate archive")
	}

	keywords := lo.Uniq(lo.Map(in.Keywords, func(k string, _ int) string {
		return validator.LowercaseKeyword(k)
	}))
	if len(keywords) > maxKeywords {
		return nil, goerror.NewInvalidInput(nil, "keywords", "too many keywords")
	}

	checksum, size, err := s.uploadArchive(ctx, in)
	if err != nil {
		return nil, err
	}

	data := entity.PublishData{
		CrateID:     s.uid.Generate(),
		VersionID:   s.uid.Generate(),
		Name:        in.Name,
		Description: in.Description,
		Num:         in.Version,
		Checksum:    checksum,
		Size:        size,
		Keywords:    keywords,
		KeywordIDs: lo.Map(keywords, func(string, int) int64 {
			return s.uid.Generate()
		}),
	}

	err = s.repoDB.PublishVersion(ctx, data)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "version already exists", "crate", in.Name, "version", in.Version)
		return nil, goerror.NewBusiness("version already published", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo publish version", "crate", in.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.announcePublished(ctx, CratePublishedEvent{
		CrateID:   data.CrateID,
		Name:      in.Name,
		Version:   in.Version,
		Checksum:  checksum,
		Publisher: au.UserID,
	})

	now := s.clock.Now()
	return &PublishOutput{
		Crate: entity.Crate{
			ID:          data.CrateID,
			Name:        in.Name,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Version: entity.Version{
			ID:        data.VersionID,
			CrateID:   data.CrateID,
			Num:       in.Version,
			Checksum:  checksum,
			Size:      size,
			CreatedAt: now,
		},
		Checksum: checksum,
	}, nil
}

func (s *Usecase) uploadArchive(ctx context.Context, in PublishInput) (checksum string, size int64, err error) {
	hasher := sha256.New()
	body := io.TeeReader(in.Archive, hasher)

	info, err := s.storage.PutObject(ctx, s.bucket(), CratePath(in.Name, in.Version), body, storage.PutOptions{
		Size:        in.ArchiveSize,
		ContentType: "application/gzip",
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store crate archive", "crate", in.Name, "error", err)
		return "", 0, goerror.NewServer(err)
	}

	if in.ReadmeHTML != "" {
		readme := strings.NewReader(in.ReadmeHTML)
		_, err = s.storage.PutObject(ctx, s.bucket(), ReadmePath(in.Name, in.Version), readme, storage.PutOptions{
			Size:        int64(len(in.ReadmeHTML)),
			ContentType: "text/html; charset=utf-8",
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to store crate readme", "crate", in.Name, "error", err)
			return "", 0, goerror.NewServer(err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), info.Size, nil
}

func (s *Usecase) announcePublished(ctx context.Context, event CratePublishedEvent) {
	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		if err := s.repoMessaging.PublishCratePublished(gctx, event); err != nil {
			slog.ErrorContext(gctx, "failed to announce published crate", "crate", event.Name, "error", err)
		}
		return nil
	})
}

package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
)

type (
	DownloadInput struct {
		Name    string `validate:"required,cratename"`
		Version string `validate:"required,max=64"`
	}

	DownloadOutput struct {
		// Location is where the client fetches the archive: a CDN URL
		// when one is configured, a signed storage URL otherwise.
		Location string
	}
)

// Download resolves a version to a fetchable URL and counts the hit. The
// count lands in Redis and reaches the database on the next flush, so the
// download path never waits on Postgres writes.
func (s *Usecase) Download(ctx context.Context, in DownloadInput) (*DownloadOutput, error) {
	ctx, span := s.startSpan(ctx, "Download")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	version, err := s.repoDB.GetVersion(ctx, in.Name, in.Version)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("crate version not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get version", "crate", in.Name, "version", in.Version, "error", err)
		return nil, goerror.NewServer(err)
	}

	location := crateLocation(s.cfg.GetString("storage.cdn_host"), in.Name, in.Version)
	if location == "" {
		expiry := s.cfg.GetMinute("storage.presign_expiry_minutes")
		if expiry <= 0 {
			expiry = 5 * time.Minute
		}

		location, err = s.storage.PresignGet(ctx, s.bucket(), CratePath(in.Name, in.Version), expiry)
		if err != nil {
			slog.ErrorContext(ctx, "failed to presign crate archive", "crate", in.Name, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	versionID := version.ID
	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		countCtx, cancel := context.WithTimeout(gctx, 5*time.Second)
		defer cancel()

		if err := s.counter.Increment(countCtx, versionID); err != nil {
			slog.ErrorContext(countCtx, "failed to count download", "version_id", versionID, "error", err)
		}
		return nil
	})

	return &DownloadOutput{Location: location}, nil
}

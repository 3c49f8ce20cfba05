// Package db persists crates, versions and keywords on Postgres with
// hand-written pgx queries. It also serves as the sink for drained
// download counters.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{
		conn: conn,
		ins:  ins,
	}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("registry.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// AddDownloads applies drained counter totals. Version rows and the
// owning crate rows are bumped in one transaction per batch.
func (s *DB) AddDownloads(ctx context.Context, totals map[int64]int64) (err error) {
	ctx, span := s.startSpan(ctx, "AddDownloads")
	defer func() { s.endSpan(span, err) }()

	if len(totals) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slogRollback(ctx, rErr)
		}
	}()

	batch := &pgx.Batch{}
	for versionID, n := range totals {
		batch.Queue(`UPDATE versions SET downloads = downloads + $2 WHERE id = $1`, versionID, n)
		batch.Queue(`
			UPDATE crates SET downloads = downloads + $2
			WHERE id = (SELECT crate_id FROM versions WHERE id = $1)`, versionID, n)
	}

	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

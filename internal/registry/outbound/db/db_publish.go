package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

func slogRollback(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "failed to rollback", "error", err)
}

// PublishVersion records one release: the crate row is created or its
// metadata refreshed, the version row is inserted, and the crate's
// keyword links are replaced. A duplicate version surfaces as
// goerror.ErrConflict.
func (s *DB) PublishVersion(ctx context.Context, in entity.PublishData) (err error) {
	ctx, span := s.startSpan(ctx, "PublishVersion")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slogRollback(ctx, rErr)
		}
	}()

	var crateID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO crates (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description, updated_at = NOW()
		RETURNING id`,
		in.CrateID, in.Name, in.Description,
	).Scan(&crateID)
	if err != nil {
		return s.mapError(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO versions (id, crate_id, num, checksum, size)
		VALUES ($1, $2, $3, $4, $5)`,
		in.VersionID, crateID, in.Num, in.Checksum, in.Size,
	)
	if err != nil {
		return s.mapError(err)
	}

	if err = s.replaceKeywords(ctx, tx, crateID, in.Keywords, in.KeywordIDs); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// replaceKeywords is the find-or-create-then-relink step: missing
// keywords are inserted with ON CONFLICT DO NOTHING, the full set is
// reloaded by name, and the crate's links are replaced with it.
func (s *DB) replaceKeywords(ctx context.Context, tx pgx.Tx, crateID int64, keywords []string, keywordIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM crates_keywords WHERE crate_id = $1`, crateID); err != nil {
		return s.mapError(err)
	}

	if len(keywords) == 0 {
		return nil
	}
	if len(keywordIDs) < len(keywords) {
		return goerror.NewServer(errors.New("db: keyword id candidates missing"))
	}

	batch := &pgx.Batch{}
	for i, kw := range keywords {
		batch.Queue(`
			INSERT INTO keywords (id, keyword)
			VALUES ($1, $2)
			ON CONFLICT (keyword) DO NOTHING`,
			keywordIDs[i], kw)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return s.mapError(err)
	}

	rows, err := tx.Query(ctx, `SELECT id FROM keywords WHERE keyword = ANY($1)`, keywords)
	if err != nil {
		return s.mapError(err)
	}

	ids := make([]int64, 0, len(keywords))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return s.mapError(err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return s.mapError(err)
	}

	link := &pgx.Batch{}
	for _, id := range ids {
		link.Queue(`INSERT INTO crates_keywords (crate_id, keyword_id) VALUES ($1, $2)`, crateID, id)
	}
	if err := tx.SendBatch(ctx, link).Close(); err != nil {
		return s.mapError(err)
	}

	return nil
}

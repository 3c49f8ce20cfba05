// Package db persists API tokens on Postgres. Queries are written by hand
// against pgx; the token digest column is BYTEA and always exactly the
// digest width.
package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/token"
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
	return s.ins.Tracer("credential.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateToken(ctx context.Context, in entity.NewAPIToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		INSERT INTO api_tokens (id, user_id, name, token_hash)
		VALUES ($1, $2, $3, $4)`

	_, err = s.conn.Exec(ctx, query, in.ID, in.UserID, in.Name, in.TokenHash.Bytes())
	return s.mapError(err)
}

func (s *DB) GetTokensByUserID(ctx context.Context, userID int64) (_ []entity.APIToken, err error) {
	ctx, span := s.startSpan(ctx, "GetTokensByUserID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, user_id, name, last_used_at, created_at, revoked
		FROM api_tokens
		WHERE user_id = $1 AND revoked = FALSE
		ORDER BY created_at DESC, id DESC`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	tokens := make([]entity.APIToken, 0)
	for rows.Next() {
		var t entity.APIToken
		if err = rows.Scan(&t.ID, &t.UserID, &t.Name, &t.LastUsedAt, &t.CreatedAt, &t.Revoked); err != nil {
			return nil, s.mapError(err)
		}
		tokens = append(tokens, t)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return tokens, nil
}

func (s *DB) GetTokenByDigest(ctx context.Context, digest token.HashedToken) (_ *entity.APIToken, err error) {
	ctx, span := s.startSpan(ctx, "GetTokenByDigest")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, user_id, name, token_hash, last_used_at, created_at, revoked
		FROM api_tokens
		WHERE token_hash = $1`

	var t entity.APIToken
	var rawDigest []byte
	err = s.conn.QueryRow(ctx, query, digest.Bytes()).
		Scan(&t.ID, &t.UserID, &t.Name, &rawDigest, &t.LastUsedAt, &t.CreatedAt, &t.Revoked)
	if err != nil {
		return nil, s.mapError(err)
	}

	stored, err := token.FromBytes(rawDigest)
	if err != nil {
		return nil, err
	}
	if !stored.Equal(digest) {
		return nil, goerror.ErrNotFound
	}

	return &t, nil
}

func (s *DB) RevokeToken(ctx context.Context, id, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "RevokeToken")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE api_tokens
		SET revoked = TRUE
		WHERE id = $1 AND user_id = $2 AND revoked = FALSE`

	tag, err := s.conn.Exec(ctx, query, id, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

func (s *DB) TouchTokenLastUsed(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "TouchTokenLastUsed")
	defer func() { s.endSpan(span, err) }()

	const query = `UPDATE api_tokens SET last_used_at = NOW() WHERE id = $1`

	_, err = s.conn.Exec(ctx, query, id)
	return s.mapError(err)
}

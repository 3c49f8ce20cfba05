package db

import (
	"context"

	"github.com/cratebin/cratebin/internal/registry/entity"
)

func (s *DB) GetCrateByName(ctx context.Context, name string) (_ *entity.Crate, err error) {
	ctx, span := s.startSpan(ctx, "GetCrateByName")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, name, description, downloads, created_at, updated_at
		FROM crates
		WHERE name = $1`

	var c entity.Crate
	err = s.conn.QueryRow(ctx, query, name).
		Scan(&c.ID, &c.Name, &c.Description, &c.Downloads, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}

func (s *DB) GetVersionsByCrateID(ctx context.Context, crateID int64) (_ []entity.Version, err error) {
	ctx, span := s.startSpan(ctx, "GetVersionsByCrateID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, crate_id, num, checksum, size, downloads, created_at
		FROM versions
		WHERE crate_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := s.conn.Query(ctx, query, crateID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	versions := make([]entity.Version, 0)
	for rows.Next() {
		var v entity.Version
		if err = rows.Scan(&v.ID, &v.CrateID, &v.Num, &v.Checksum, &v.Size, &v.Downloads, &v.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		versions = append(versions, v)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return versions, nil
}

func (s *DB) GetKeywordsByCrateID(ctx context.Context, crateID int64) (_ []entity.Keyword, err error) {
	ctx, span := s.startSpan(ctx, "GetKeywordsByCrateID")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT k.id, k.keyword, k.crates_cnt, k.created_at
		FROM keywords k
		JOIN crates_keywords ck ON ck.keyword_id = k.id
		WHERE ck.crate_id = $1
		ORDER BY k.keyword`

	rows, err := s.conn.Query(ctx, query, crateID)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	keywords := make([]entity.Keyword, 0)
	for rows.Next() {
		var k entity.Keyword
		if err = rows.Scan(&k.ID, &k.Keyword, &k.CratesCnt, &k.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		keywords = append(keywords, k)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return keywords, nil
}

func (s *DB) GetVersion(ctx context.Context, name, num string) (_ *entity.Version, err error) {
	ctx, span := s.startSpan(ctx, "GetVersion")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT v.id, v.crate_id, v.num, v.checksum, v.size, v.downloads, v.created_at
		FROM versions v
		JOIN crates c ON c.id = v.crate_id
		WHERE c.name = $1 AND v.num = $2`

	var v entity.Version
	err = s.conn.QueryRow(ctx, query, name, num).
		Scan(&v.ID, &v.CrateID, &v.Num, &v.Checksum, &v.Size, &v.Downloads, &v.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &v, nil
}

func (s *DB) GetKeywordList(ctx context.Context, limit, offset int32) (_ []entity.Keyword, total int64, err error) {
	ctx, span := s.startSpan(ctx, "GetKeywordList")
	defer func() { s.endSpan(span, err) }()

	if err = s.conn.QueryRow(ctx, `SELECT COUNT(*) FROM keywords`).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	const query = `
		SELECT id, keyword, crates_cnt, created_at
		FROM keywords
		ORDER BY crates_cnt DESC, keyword
		LIMIT $1 OFFSET $2`

	rows, err := s.conn.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	keywords := make([]entity.Keyword, 0)
	for rows.Next() {
		var k entity.Keyword
		if err = rows.Scan(&k.ID, &k.Keyword, &k.CratesCnt, &k.CreatedAt); err != nil {
			return nil, 0, s.mapError(err)
		}
		keywords = append(keywords, k)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return keywords, total, nil
}

func (s *DB) GetKeywordByName(ctx context.Context, name string) (_ *entity.Keyword, err error) {
	ctx, span := s.startSpan(ctx, "GetKeywordByName")
	defer func() { s.endSpan(span, err) }()

	const query = `
		SELECT id, keyword, crates_cnt, created_at
		FROM keywords
		WHERE keyword = LOWER($1)`

	var k entity.Keyword
	err = s.conn.QueryRow(ctx, query, name).
		Scan(&k.ID, &k.Keyword, &k.CratesCnt, &k.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &k, nil
}

package inbound

import (
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/registry/usecase"
)

const (
	// maxMetadataLen caps the JSON metadata block of a publish payload.
	maxMetadataLen = 1 << 20 // 1MiB
	// maxArchiveLen caps the crate archive of a publish payload.
	maxArchiveLen = 100 << 20 // 100MiB
)

// HTTPEndpoint exposes HTTP handlers for publishing and browsing crates.
type HTTPEndpoint struct {
	uc uc
}

// Publish accepts a length-framed payload: metadata JSON first, then the
// crate archive.
func (h *HTTPEndpoint) Publish(r *router.Request) (any, error) {
	var meta PublishMetadata
	archive, size, err := r.DecodeFramedBody(&meta, maxMetadataLen, maxArchiveLen)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Publish(r.Context(), usecase.PublishInput{
		Name:        meta.Name,
		Version:     meta.Vers,
		Description: meta.Description,
		Keywords:    meta.Keywords,
		Archive:     archive,
		ArchiveSize: size,
		ReadmeHTML:  meta.Readme,
	})
	if err != nil {
		return nil, err
	}

	return PublishResponse{
		Crate: CrateItem{
			ID:          resp.Crate.ID,
			Name:        resp.Crate.Name,
			Description: resp.Crate.Description,
		},
		Version:  resp.Version.Num,
		Checksum: resp.Checksum,
	}, nil
}

// Download redirects to where the archive is served from.
func (h *HTTPEndpoint) Download(r *router.Request) (any, error) {
	resp, err := h.uc.Download(r.Context(), usecase.DownloadInput{
		Name:    r.GetParam("name"),
		Version: r.GetParam("version"),
	})
	if err != nil {
		return nil, err
	}

	return router.Redirect{Location: resp.Location}, nil
}

// CrateDetail returns crate metadata, versions and keywords.
func (h *HTTPEndpoint) CrateDetail(r *router.Request) (any, error) {
	resp, err := h.uc.CrateDetail(r.Context(), usecase.CrateDetailInput{
		Name: r.GetParam("name"),
	})
	if err != nil {
		return nil, err
	}

	detail := resp.Detail
	versions := make([]VersionItem, 0, len(detail.Versions))
	for _, v := range detail.Versions {
		versions = append(versions, VersionItem{
			Num:       v.Num,
			Checksum:  v.Checksum,
			Size:      v.Size,
			Downloads: v.Downloads,
			CreatedAt: v.CreatedAt,
		})
	}

	keywords := make([]string, 0, len(detail.Keywords))
	for _, k := range detail.Keywords {
		keywords = append(keywords, k.Keyword)
	}

	return CrateDetailResponse{
		Crate: CrateItem{
			ID:          detail.Crate.ID,
			Name:        detail.Crate.Name,
			Description: detail.Crate.Description,
			Downloads:   detail.Crate.Downloads,
			CreatedAt:   detail.Crate.CreatedAt,
			UpdatedAt:   detail.Crate.UpdatedAt,
		},
		Versions: versions,
		Keywords: keywords,
	}, nil
}

// KeywordList pages through keywords ordered by crate count.
func (h *HTTPEndpoint) KeywordList(r *router.Request) (any, error) {
	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}
	perPage, err := r.GetQueryInt32("per_page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.KeywordList(r.Context(), usecase.KeywordListInput{
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return nil, err
	}

	keywords := make([]KeywordItem, 0, len(resp.Keywords))
	for _, k := range resp.Keywords {
		keywords = append(keywords, KeywordItem{
			Keyword:   k.Keyword,
			CratesCnt: k.CratesCnt,
			CreatedAt: k.CreatedAt,
		})
	}

	return KeywordListResponse{Keywords: keywords, Total: resp.Total}, nil
}

// KeywordDetail returns a single keyword with its crate count.
func (h *HTTPEndpoint) KeywordDetail(r *router.Request) (any, error) {
	resp, err := h.uc.KeywordDetail(r.Context(), usecase.KeywordDetailInput{
		Keyword: r.GetParam("keyword"),
	})
	if err != nil {
		return nil, err
	}

	return KeywordItem{
		Keyword:   resp.Keyword.Keyword,
		CratesCnt: resp.Keyword.CratesCnt,
		CreatedAt: resp.Keyword.CreatedAt,
	}, nil
}

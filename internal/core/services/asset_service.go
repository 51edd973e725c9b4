package services

import (
	"context"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
)

// SearchRequest addresses one page of the chronologically sorted listing.
// Page takes precedence over Skip when the remote handed out a page token.
type SearchRequest struct {
	Take       int
	Skip       int
	Page       *int
	Order      string
	AssetTypes []domain.AssetType
}

// SearchPage is a raw (unfiltered) batch. NextPage, Total and Count are nil
// when the remote response did not carry them.
type SearchPage struct {
	Items    []domain.Asset
	NextPage *int
	Total    *int
	Count    *int
}

type AssetService interface {
	FetchRandom(ctx context.Context, count int) ([]domain.Asset, error)
	SearchChronological(ctx context.Context, req SearchRequest) (SearchPage, error)
	DeleteAssets(ctx context.Context, ids []string, force bool) error
	RestoreAssets(ctx context.Context, ids []string) error
	AddAssetsToAlbum(ctx context.Context, albumID string, ids []string) error
	ListAlbums(ctx context.Context) ([]domain.Album, error)
}

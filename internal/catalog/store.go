package catalog

import (
	"context"
	"errors"
)

var (
	ErrNoRecord         = errors.New("catalog: no such video")
	ErrUnknownRendition = errors.New("catalog: unknown rendition column")
)

// Store is the catalog persistence interface. SetRendition and SetThumbnail
// are scoped writes: implementations must touch only the named column and
// must never read-modify-write the whole row.
type Store interface {
	Create(ctx context.Context, params NewVideoParams) (*VideoAsset, error)
	Get(ctx context.Context, id int64) (*VideoAsset, error)
	List(ctx context.Context, filter ListFilter) ([]*VideoAsset, error)
	Delete(ctx context.Context, id int64) error
	SetRendition(ctx context.Context, id int64, res Resolution, ref string) error
	SetThumbnail(ctx context.Context, id int64, ref string) error
}

type ListFilter struct {
	Genre Genre // zero value means no filter
}

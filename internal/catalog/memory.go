package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local development.
// It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	videos map[int64]*VideoAsset
	nextID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		videos: make(map[int64]*VideoAsset),
		nextID: 1,
	}
}

func (s *MemoryStore) Create(ctx context.Context, params NewVideoParams) (*VideoAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := &VideoAsset{
		ID:          s.nextID,
		Title:       params.Title,
		Description: params.Description,
		Genre:       params.Genre,
		CreatedAt:   time.Now().UTC(),
		Original:    params.Original,
		Renditions:  make(map[Resolution]string),
	}
	s.videos[v.ID] = v
	s.nextID++

	return copyVideo(v), nil
}

func (s *MemoryStore) Get(ctx context.Context, id int64) (*VideoAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return copyVideo(v), nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*VideoAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var videos []*VideoAsset
	for _, v := range s.videos {
		if filter.Genre != "" && v.Genre != filter.Genre {
			continue
		}
		videos = append(videos, copyVideo(v))
	}
	// Newest first, matching the SQL store's ordering.
	sort.Slice(videos, func(i, j int) bool {
		if !videos[i].CreatedAt.Equal(videos[j].CreatedAt) {
			return videos[i].CreatedAt.After(videos[j].CreatedAt)
		}
		return videos[i].ID > videos[j].ID
	})
	return videos, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return ErrNoRecord
	}
	delete(s.videos, id)
	return nil
}

// SetRendition mirrors the single-column UPDATE of the SQL store: only the
// one rendition entry changes, concurrent writers never clobber each other.
func (s *MemoryStore) SetRendition(ctx context.Context, id int64, res Resolution, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := renditionColumns[res]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRendition, res)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return ErrNoRecord
	}
	v.Renditions[res] = ref
	return nil
}

func (s *MemoryStore) SetThumbnail(ctx context.Context, id int64, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.videos[id]
	if !ok {
		return ErrNoRecord
	}
	v.Thumbnail = ref
	return nil
}

func copyVideo(v *VideoAsset) *VideoAsset {
	out := *v
	out.Renditions = make(map[Resolution]string, len(v.Renditions))
	for res, ref := range v.Renditions {
		out.Renditions[res] = ref
	}
	return &out
}

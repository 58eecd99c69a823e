package catalog

import (
	"fmt"
	"time"
)

// Resolution identifies one of the fixed rendition sizes produced for every
// video. The set is closed; adding a value means adding a database column.
type Resolution string

const (
	Res144p  Resolution = "144p"
	Res240p  Resolution = "240p"
	Res360p  Resolution = "360p"
	Res480p  Resolution = "480p"
	Res720p  Resolution = "720p"
	Res1080p Resolution = "1080p"
)

// AllResolutions lists every rendition tag in ascending order.
var AllResolutions = []Resolution{Res144p, Res240p, Res360p, Res480p, Res720p, Res1080p}

var frameSizes = map[Resolution][2]int{
	Res144p:  {256, 144},
	Res240p:  {426, 240},
	Res360p:  {640, 360},
	Res480p:  {854, 480},
	Res720p:  {1280, 720},
	Res1080p: {1920, 1080},
}

// FrameSize returns the target width and height for the resolution.
func (r Resolution) FrameSize() (width, height int) {
	size, ok := frameSizes[r]
	if !ok {
		return 0, 0
	}
	return size[0], size[1]
}

func (r Resolution) Valid() bool {
	_, ok := frameSizes[r]
	return ok
}

func ParseResolution(s string) (Resolution, error) {
	r := Resolution(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown resolution %q", s)
	}
	return r, nil
}

type Genre string

const (
	GenreAction      Genre = "action"
	GenreComedy      Genre = "comedy"
	GenreDrama       Genre = "drama"
	GenreSciFi       Genre = "sci-fi"
	GenreHorror      Genre = "horror"
	GenreDocumentary Genre = "documentary"
)

var AllGenres = []Genre{GenreAction, GenreComedy, GenreDrama, GenreSciFi, GenreHorror, GenreDocumentary}

func (g Genre) Valid() bool {
	switch g {
	case GenreAction, GenreComedy, GenreDrama, GenreSciFi, GenreHorror, GenreDocumentary:
		return true
	}
	return false
}

func ParseGenre(s string) (Genre, error) {
	g := Genre(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown genre %q", s)
	}
	return g, nil
}

// VideoAsset is the catalog record for one uploaded video. Original is set
// once at creation; each rendition entry and the thumbnail are written at
// most once, by single-column updates.
type VideoAsset struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Genre       Genre                 `json:"genre"`
	CreatedAt   time.Time             `json:"created_at"`
	Original    string                `json:"original"`
	Renditions  map[Resolution]string `json:"renditions"`
	Thumbnail   string                `json:"thumbnail,omitempty"`
}

// Refs collects every storage key the asset references, for cleanup.
func (v *VideoAsset) Refs() []string {
	refs := make([]string, 0, len(AllResolutions)+2)
	if v.Original != "" {
		refs = append(refs, v.Original)
	}
	for _, res := range AllResolutions {
		if ref := v.Renditions[res]; ref != "" {
			refs = append(refs, ref)
		}
	}
	if v.Thumbnail != "" {
		refs = append(refs, v.Thumbnail)
	}
	return refs
}

// Rendition returns the storage key for a resolution, or "" when the worker
// has not produced it yet.
func (v *VideoAsset) Rendition(res Resolution) string {
	return v.Renditions[res]
}

type NewVideoParams struct {
	Title       string
	Description string
	Genre       Genre
	Original    string
}

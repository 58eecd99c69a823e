package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reelforge/reelforge/internal/logger"
)

// renditionColumns maps each resolution tag to its database column. Scoped
// writes go through this table so a bad tag fails before reaching SQL.
var renditionColumns = map[Resolution]string{
	Res144p:  "video_144p",
	Res240p:  "video_240p",
	Res360p:  "video_360p",
	Res480p:  "video_480p",
	Res720p:  "video_720p",
	Res1080p: "video_1080p",
}

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const videoColumns = `id, title, description, genre, created_at, original,
	video_144p, video_240p, video_360p, video_480p, video_720p, video_1080p,
	thumbnail`

func (s *PostgresStore) Create(ctx context.Context, params NewVideoParams) (*VideoAsset, error) {
	v := &VideoAsset{
		Title:       params.Title,
		Description: params.Description,
		Genre:       params.Genre,
		Original:    params.Original,
		Renditions:  make(map[Resolution]string),
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO videos (title, description, genre, original)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		params.Title, params.Description, string(params.Genre), params.Original,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	return v, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*VideoAsset, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	v, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRecord
		}
		return nil, fmt.Errorf("select video %d: %w", id, err)
	}
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]*VideoAsset, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	args := []any{}
	if filter.Genre != "" {
		query += ` WHERE genre = $1`
		args = append(args, string(filter.Genre))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*VideoAsset
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRecord
	}
	return nil
}

// SetRendition updates exactly one rendition column. The column name comes
// from the fixed resolution table, never from the caller.
func (s *PostgresStore) SetRendition(ctx context.Context, id int64, res Resolution, ref string) error {
	column, ok := renditionColumns[res]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRendition, res)
	}

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE videos SET %s = $2 WHERE id = $1`, column),
		id, ref)
	if err != nil {
		return fmt.Errorf("update %s for video %d: %w", column, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRecord
	}

	logger.FromContext(ctx).Debug("rendition recorded", "video_id", id, "resolution", res, "ref", ref)
	return nil
}

func (s *PostgresStore) SetThumbnail(ctx context.Context, id int64, ref string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE videos SET thumbnail = $2 WHERE id = $1`, id, ref)
	if err != nil {
		return fmt.Errorf("update thumbnail for video %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRecord
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*VideoAsset, error) {
	var (
		v          VideoAsset
		genre      string
		renditions [6]*string
		thumbnail  *string
	)

	err := row.Scan(
		&v.ID, &v.Title, &v.Description, &genre, &v.CreatedAt, &v.Original,
		&renditions[0], &renditions[1], &renditions[2],
		&renditions[3], &renditions[4], &renditions[5],
		&thumbnail,
	)
	if err != nil {
		return nil, err
	}

	v.Genre = Genre(genre)
	v.Renditions = make(map[Resolution]string)
	for i, res := range AllResolutions {
		if renditions[i] != nil && *renditions[i] != "" {
			v.Renditions[res] = *renditions[i]
		}
	}
	if thumbnail != nil {
		v.Thumbnail = *thumbnail
	}
	return &v, nil
}

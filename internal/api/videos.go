package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/reelforge/reelforge/internal/apperror"
	"github.com/reelforge/reelforge/internal/catalog"
	"github.com/reelforge/reelforge/internal/logger"
	"github.com/reelforge/reelforge/internal/metrics"
	"github.com/reelforge/reelforge/internal/storage"
)

type videoResponse struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Genre        string            `json:"genre"`
	CreatedAt    time.Time         `json:"created_at"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Renditions   map[string]string `json:"renditions"`
	VideoURL     string            `json:"video_url,omitempty"`
}

func (s *Server) videoResponse(v *catalog.VideoAsset) *videoResponse {
	resp := &videoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Genre:       string(v.Genre),
		CreatedAt:   v.CreatedAt,
		Renditions:  make(map[string]string),
	}
	if v.Thumbnail != "" {
		resp.ThumbnailURL = s.mediaURL(v.Thumbnail)
	}
	for res, ref := range v.Renditions {
		resp.Renditions[string(res)] = s.mediaURL(ref)
	}
	return resp
}

func (s *Server) mediaURL(key string) string {
	return s.baseURL + "/media/" + key
}

func (s *Server) handleListVideos(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{}
	if g := r.URL.Query().Get("genre"); g != "" {
		genre, err := catalog.ParseGenre(g)
		if err != nil {
			writeError(w, r, apperror.Wrap(err, apperror.ErrUnknownGenre))
			return
		}
		filter.Genre = genre
	}

	videos, err := s.store.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	resp := make([]*videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, s.videoResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		metrics.RecordVideoUpload("error")
		writeError(w, r, apperror.Wrap(err, apperror.ErrFileTooLarge))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))

	if err := validateTitle(title); err != nil {
		writeError(w, r, apperror.WrapWithMessage(err, "bad_request", err.Error(), http.StatusBadRequest))
		return
	}
	if err := validateDescription(description); err != nil {
		writeError(w, r, apperror.WrapWithMessage(err, "bad_request", err.Error(), http.StatusBadRequest))
		return
	}
	genre, err := catalog.ParseGenre(r.FormValue("genre"))
	if err != nil {
		writeError(w, r, apperror.Wrap(err, apperror.ErrUnknownGenre))
		return
	}

	file, header, err := r.FormFile("video_file")
	if err != nil {
		writeError(w, r, apperror.WrapWithMessage(err, "bad_request", "video_file is required", http.StatusBadRequest))
		return
	}
	defer func() { _ = file.Close() }()

	if err := validateUploadFilename(header.Filename); err != nil {
		writeError(w, r, apperror.Wrap(err, apperror.ErrInvalidFileType))
		return
	}

	base := storage.Slugify(title)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")

	key, err := storage.ResolveUnique(ctx, s.files, "videos/originals", base, "original", ext)
	if err != nil {
		metrics.RecordVideoUpload("error")
		writeError(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if err := s.files.Upload(ctx, key, file, contentType, header.Size); err != nil {
		metrics.RecordVideoUpload("error")
		writeError(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	video, err := s.store.Create(ctx, catalog.NewVideoParams{
		Title:       title,
		Description: description,
		Genre:       genre,
		Original:    key,
	})
	if err != nil {
		metrics.RecordVideoUpload("error")
		writeError(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	log.Info("video created", "video_id", video.ID, "original", key)
	metrics.RecordVideoUpload("success")

	// Fires exactly once per creation; the dispatcher owns everything async.
	s.events.OnAssetCreated(logger.WithVideoID(ctx, video.ID), video.ID)

	// Re-read so the response reflects the inline thumbnail when it landed.
	if fresh, err := s.store.Get(ctx, video.ID); err == nil {
		video = fresh
	}

	writeJSON(w, http.StatusCreated, s.videoResponse(video))
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, apperror.ErrBadRequest)
		return
	}

	video, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, storeError(err))
		return
	}

	resp := s.videoResponse(video)

	if tag := r.URL.Query().Get("resolution"); tag != "" {
		res, err := catalog.ParseResolution(tag)
		if err != nil {
			writeError(w, r, apperror.Wrap(err, apperror.ErrUnknownResolution))
			return
		}
		ref := video.Rendition(res)
		if ref == "" {
			writeError(w, r, apperror.ErrRenditionNotReady)
			return
		}
		resp.VideoURL = s.mediaURL(ref)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, apperror.ErrBadRequest)
		return
	}

	video, err := s.store.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, storeError(err))
		return
	}
	if video.Thumbnail == "" {
		writeError(w, r, apperror.ErrThumbnailNotReady)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"title":         video.Title,
		"thumbnail_url": s.mediaURL(video.Thumbnail),
	})
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	id, err := parseID(r)
	if err != nil {
		writeError(w, r, apperror.ErrBadRequest)
		return
	}

	video, err := s.store.Get(ctx, id)
	if err != nil {
		writeError(w, r, storeError(err))
		return
	}
	refs := video.Refs()

	if err := s.store.Delete(ctx, id); err != nil {
		metrics.RecordVideoDeletion("error")
		writeError(w, r, storeError(err))
		return
	}

	log.Info("video deleted", "video_id", id, "refs", len(refs))
	metrics.RecordVideoDeletion("success")

	// Best-effort file sweep; the record is gone either way.
	s.events.OnAssetDeleted(ctx, refs)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRequeueVideo(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, apperror.ErrBadRequest)
		return
	}

	requeued, err := s.requeuer.Requeue(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNoRecord) {
			writeError(w, r, apperror.ErrNotFound)
			return
		}
		writeError(w, r, apperror.Wrap(err, apperror.ErrInternal))
		return
	}

	tags := make([]string, 0, len(requeued))
	for _, res := range requeued {
		tags = append(tags, string(res))
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"requeued": tags})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func storeError(err error) error {
	if errors.Is(err, catalog.ErrNoRecord) {
		return apperror.ErrNotFound
	}
	return apperror.Wrap(err, apperror.ErrInternal)
}

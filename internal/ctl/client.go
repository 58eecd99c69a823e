package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin HTTP client for the service API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type Video struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Genre        string            `json:"genre"`
	CreatedAt    time.Time         `json:"created_at"`
	ThumbnailURL string            `json:"thumbnail_url,omitempty"`
	Renditions   map[string]string `json:"renditions"`
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) ListVideos(ctx context.Context, genre string) ([]Video, error) {
	path := "/api/videos"
	if genre != "" {
		path += "?genre=" + genre
	}
	var videos []Video
	if err := c.do(ctx, http.MethodGet, path, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (c *Client) GetVideo(ctx context.Context, id int64) (*Video, error) {
	var video Video
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/videos/%d", id), &video); err != nil {
		return nil, err
	}
	return &video, nil
}

func (c *Client) Requeue(ctx context.Context, id int64) ([]string, error) {
	var resp struct {
		Requeued []string `json:"requeued"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/videos/%d/requeue", id), &resp); err != nil {
		return nil, err
	}
	return resp.Requeued, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil)
}

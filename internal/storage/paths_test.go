package storage

import (
	"context"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "My Movie", want: "my-movie"},
		{name: "already lowercase", title: "trailer", want: "trailer"},
		{name: "accented characters", title: "Café Olé", want: "cafe-ole"},
		{name: "punctuation stripped", title: "What?! A Movie...", want: "what-a-movie"},
		{name: "hyphens collapse", title: "deep -- space", want: "deep-space"},
		{name: "underscores kept", title: "raw_cut_v2", want: "raw_cut_v2"},
		{name: "digits kept", title: "Episode 42", want: "episode-42"},
		{name: "leading and trailing spaces", title: "  padded  ", want: "padded"},
		{name: "only punctuation", title: "?!#", want: ""},
		{name: "empty", title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestResolveUnique(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	key, err := ResolveUnique(ctx, store, "videos/originals", "my-movie", "original", "mp4")
	if err != nil {
		t.Fatalf("ResolveUnique() error = %v", err)
	}
	if key != "videos/originals/my-movie.original.mp4" {
		t.Errorf("ResolveUnique() = %q, want %q", key, "videos/originals/my-movie.original.mp4")
	}
}

func TestResolveUnique_Increments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	want := []string{
		"videos/480p/demo.480p.mp4",
		"videos/480p/demo_1.480p.mp4",
		"videos/480p/demo_2.480p.mp4",
	}

	for i, expected := range want {
		key, err := ResolveUnique(ctx, store, "videos/480p", "demo", "480p", "mp4")
		if err != nil {
			t.Fatalf("ResolveUnique() round %d error = %v", i, err)
		}
		if key != expected {
			t.Errorf("ResolveUnique() round %d = %q, want %q", i, key, expected)
		}
		if err := store.Upload(ctx, key, strings.NewReader("data"), "video/mp4", 4); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
	}
}

func TestResolveUnique_SkipsExistingSuffixes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()

	for _, key := range []string{
		"thumbnails/demo.thumb.jpg",
		"thumbnails/demo_1.thumb.jpg",
		"thumbnails/demo_2.thumb.jpg",
	} {
		if err := store.Upload(ctx, key, strings.NewReader("x"), "image/jpeg", 1); err != nil {
			t.Fatalf("Upload() error = %v", err)
		}
	}

	key, err := ResolveUnique(ctx, store, "thumbnails", "demo", "thumb", "jpg")
	if err != nil {
		t.Fatalf("ResolveUnique() error = %v", err)
	}
	if key != "thumbnails/demo_3.thumb.jpg" {
		t.Errorf("ResolveUnique() = %q, want %q", key, "thumbnails/demo_3.thumb.jpg")
	}
}

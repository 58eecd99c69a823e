package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func newTestDiskStorage(t *testing.T) *DiskStorage {
	t.Helper()
	store, err := NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStorage() error = %v", err)
	}
	return store
}

func TestDiskStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStorage(t)

	content := "raw video bytes"
	if err := store.Upload(ctx, "videos/originals/demo.original.mp4", strings.NewReader(content), "video/mp4", int64(len(content))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	reader, err := store.Download(ctx, "videos/originals/demo.original.mp4")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != content {
		t.Errorf("Download() = %q, want %q", string(data), content)
	}
}

func TestDiskStorage_DownloadMissing(t *testing.T) {
	store := newTestDiskStorage(t)

	_, err := store.Download(context.Background(), "videos/nope.mp4")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestDiskStorage_RejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStorage(t)

	keys := []string{
		"",
		"../outside.mp4",
		"videos/../../etc/passwd",
	}

	for _, key := range keys {
		if err := store.Upload(ctx, key, strings.NewReader("x"), "video/mp4", 1); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Upload(%q) error = %v, want ErrInvalidKey", key, err)
		}
		if _, err := store.Download(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Download(%q) error = %v, want ErrInvalidKey", key, err)
		}
		if err := store.Delete(ctx, key); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Delete(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestDiskStorage_Promote(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStorage(t)

	scratch := t.TempDir()
	localPath := filepath.Join(scratch, "output.mp4")
	if err := os.WriteFile(localPath, []byte("encoded"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := store.Promote(ctx, localPath, "videos/480p/demo.480p.mp4", "video/mp4"); err != nil {
		t.Fatalf("Promote() error = %v", err)
	}

	if _, err := os.Stat(localPath); !os.IsNotExist(err) {
		t.Errorf("Promote() left local file behind, stat error = %v", err)
	}

	exists, err := store.Exists(ctx, "videos/480p/demo.480p.mp4")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !exists {
		t.Error("Exists() = false after Promote()")
	}
}

func TestDiskStorage_PromoteMissingLocal(t *testing.T) {
	store := newTestDiskStorage(t)

	err := store.Promote(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"), "videos/x.mp4", "video/mp4")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Promote() error = %v, want ErrNotFound", err)
	}
}

func TestDiskStorage_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStorage(t)

	if err := store.Upload(ctx, "thumbnails/1.jpg", strings.NewReader("jpeg"), "image/jpeg", 4); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if err := store.Delete(ctx, "thumbnails/1.jpg"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "thumbnails/1.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() second call error = %v, want ErrNotFound", err)
	}
}

func TestDiskStorage_List(t *testing.T) {
	ctx := context.Background()
	store := newTestDiskStorage(t)

	files := []string{
		"videos/originals/a.original.mp4",
		"videos/480p/a.480p.mp4",
		"thumbnails/1.jpg",
	}
	for _, key := range files {
		if err := store.Upload(ctx, key, strings.NewReader("x"), "", 1); err != nil {
			t.Fatalf("Upload(%q) error = %v", key, err)
		}
	}

	keys, err := store.List(ctx, "videos/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	sort.Strings(keys)

	want := []string{"videos/480p/a.480p.mp4", "videos/originals/a.original.mp4"}
	if len(keys) != len(want) {
		t.Fatalf("List() returned %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

func TestLocalStorageMaterialize(t *testing.T) {
	tmpDir := t.TempDir()
	s := NewLocalStorage(filepath.Join(tmpDir, "videos"))

	path, err := s.Materialize(context.Background(), []byte("fake video data"), "video/mp4")
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if !strings.HasSuffix(path, ".mp4") {
		t.Errorf("Materialize() path = %q, want .mp4 suffix", path)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("Materialize() path = %q, want absolute path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "fake video data" {
		t.Errorf("file content = %q", data)
	}
}

func TestLocalStorageMaterializeUniquePaths(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	first, err := s.Materialize(context.Background(), []byte("a"), "video/mp4")
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	second, err := s.Materialize(context.Background(), []byte("b"), "video/mp4")
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if first == second {
		t.Errorf("Materialize() returned the same path twice: %q", first)
	}
}

func TestLocalStorageMaterializeCanceled(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Materialize(ctx, []byte("a"), "video/mp4"); err == nil {
		t.Error("Materialize() with canceled context should fail")
	}
}

func TestLocalStorageRelease(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	path, err := s.Materialize(context.Background(), []byte("a"), "video/mp4")
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}

	if err := s.Release(path); err != nil {
		t.Errorf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Release(): %v", err)
	}
	if err := s.Release(path); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
	if err := s.Release(""); err != nil {
		t.Errorf("Release(\"\") error = %v", err)
	}
}

func TestLocalStorageSaveAs(t *testing.T) {
	tmpDir := t.TempDir()
	s := NewLocalStorage(tmpDir)

	dst := filepath.Join(tmpDir, "downloads", "ace-ai-video.mp4")
	path, err := s.SaveAs([]byte("video"), dst)
	if err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if path != dst {
		t.Errorf("SaveAs() = %q, want %q", path, dst)
	}

	if _, err := s.SaveAs([]byte("video"), ""); err == nil {
		t.Error("SaveAs() with empty destination should fail")
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"video/mp4", ".mp4"},
		{"video/webm", ".webm"},
		{"video/webm; codecs=vp9", ".webm"},
		{"VIDEO/QUICKTIME", ".mov"},
		{"", ".mp4"},
		{"application/octet-stream", ".mp4"},
	}

	for _, tt := range tests {
		if got := extensionFor(tt.mime); got != tt.want {
			t.Errorf("extensionFor(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestGCSObjectName(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		file   string
		want   string
	}{
		{name: "withPrefix", prefix: "shared", file: "/tmp/out/ace-video-1.mp4", want: "shared/ace-video-1.mp4"},
		{name: "withoutPrefix", prefix: "", file: "ace-video-2.mp4", want: "ace-video-2.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GCSStorage{prefix: tt.prefix}
			if got := s.objectName(tt.file); got != tt.want {
				t.Errorf("objectName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPublicURL(t *testing.T) {
	got := publicURL("ace-share", "shared/v.mp4")
	want := "https://storage.googleapis.com/ace-share/shared/v.mp4"
	if got != want {
		t.Errorf("publicURL() = %q, want %q", got, want)
	}
}

func objectPager(objects []*gcs.ObjectAttrs, failAt int) func() (*gcs.ObjectAttrs, error) {
	i := 0
	return func() (*gcs.ObjectAttrs, error) {
		if i == failAt {
			return nil, errors.New("403 forbidden")
		}
		if i >= len(objects) {
			return nil, iterator.Done
		}
		o := objects[i]
		i++
		return o, nil
	}
}

func TestCollectShared(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	objects := []*gcs.ObjectAttrs{
		{Name: "ace/videos/", Size: 0},
		{Name: "ace/videos/ace-video-1.mp4", Size: 2048, Updated: updated},
		{Name: "ace/videos/ace-video-2.webm", Size: 512, Updated: updated},
	}
	link := func(name string) string { return "https://signed.example/" + name }

	videos, err := collectShared(objectPager(objects, -1), link)
	if err != nil {
		t.Fatalf("collectShared() error = %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("collectShared() returned %d videos, want 2", len(videos))
	}

	want := SharedVideo{
		Name:    "ace-video-1.mp4",
		Link:    "https://signed.example/ace/videos/ace-video-1.mp4",
		Size:    2048,
		Updated: updated,
	}
	if videos[0] != want {
		t.Errorf("videos[0] = %+v, want %+v", videos[0], want)
	}
}

func TestCollectSharedEmpty(t *testing.T) {
	videos, err := collectShared(objectPager(nil, -1), func(string) string { return "" })
	if err != nil || len(videos) != 0 {
		t.Errorf("collectShared() = %v, %v, want empty", videos, err)
	}
}

func TestCollectSharedError(t *testing.T) {
	objects := []*gcs.ObjectAttrs{{Name: "ace/videos/a.mp4"}}
	if _, err := collectShared(objectPager(objects, 1), func(string) string { return "" }); err == nil {
		t.Error("collectShared() error = nil, want listing error")
	}
}

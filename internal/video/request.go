package video

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
)

const defaultVideoMIME = "video/mp4"

type Image struct {
	Bytes    []byte
	MIMEType string
}

// LoadImage reads a starting frame for generation from disk.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %s is empty", path)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mimeType)
	}

	return &Image{Bytes: data, MIMEType: mimeType}, nil
}

type OutputConfig struct {
	VideoCount  int
	Resolution  string
	AspectRatio string
}

// Request is immutable once submitted.
type Request struct {
	Prompt string
	Image  *Image
	Output OutputConfig
}

type Result struct {
	VideoURI string
}

// Operation is the server-side handle of a generation job. It is re-fetched by
// Name until Done.
type Operation struct {
	Name   string
	Done   bool
	Result *Result
}

func (op *Operation) videoURI() string {
	if op == nil || op.Result == nil {
		return ""
	}
	return strings.TrimSpace(op.Result.VideoURI)
}

// Asset is a downloaded video backed by a local file. Release deletes the file;
// the asset must not be played afterwards.
type Asset struct {
	PlayableURL   string
	Path          string
	Bytes         []byte
	MIMEType      string
	OperationName string

	mu       sync.Mutex
	released bool
	release  func(path string) error
}

func newAsset(path string, data []byte, mimeType, operation string, release func(string) error) *Asset {
	return &Asset{
		PlayableURL:   (&url.URL{Scheme: "file", Path: path}).String(),
		Path:          path,
		Bytes:         data,
		MIMEType:      mimeType,
		OperationName: operation,
		release:       release,
	}
}

// Release is safe to call more than once.
func (a *Asset) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return nil
	}
	a.released = true

	if a.release == nil {
		return nil
	}
	return a.release(a.Path)
}

func (a *Asset) Released() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

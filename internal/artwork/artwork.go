package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp"

	"karolbroda.com/coverglow/internal/sampler"
)

const (
	DefaultTimeout = 5 * time.Second
	maxCoverBytes  = 16 << 20
)

var ErrEmptyRef = errors.New("empty cover reference")

// Options controls a single load-and-sample pass.
type Options struct {
	Mode    sampler.Mode
	Stride  int
	Client  *http.Client
	Timeout time.Duration
}

type Result struct {
	Ref   string
	Image image.Image
	Color sampler.Color
}

// Load fetches the cover behind ref and samples it. Any failure comes back
// as a *sampler.SamplingError carrying ref.
func Load(ctx context.Context, ref string, opts Options) (*Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Stride <= 0 {
		opts.Stride = sampler.DefaultStride
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	img, err := fetch(ctx, opts.Client, ref)
	if err != nil {
		return nil, &sampler.SamplingError{Ref: ref, Err: err}
	}

	c, err := sampler.SampleImage(img, opts.Mode, opts.Stride)
	if err != nil {
		return nil, &sampler.SamplingError{Ref: ref, Err: err}
	}

	return &Result{Ref: ref, Image: img, Color: c}, nil
}

// fetch resolves a cover reference: file:// URLs, plain paths and http(s) URLs.
func fetch(ctx context.Context, client *http.Client, ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyRef
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchRemote(ctx, client, ref)
	}

	return openLocal(strings.TrimPrefix(ref, "file://"))
}

func openLocal(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cover file: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func fetchRemote(ctx context.Context, client *http.Client, url string) (image.Image, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover fetch returned status %d", resp.StatusCode)
	}

	if resp.ContentLength > maxCoverBytes {
		return nil, fmt.Errorf("cover is too large (%d bytes)", resp.ContentLength)
	}

	return decode(io.LimitReader(resp.Body, maxCoverBytes))
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}
	return img, nil
}

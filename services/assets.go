package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AssetSet names the images embedded in exports. Each entry is either an
// http(s) URL or a path inside the static directory.
type AssetSet struct {
	Header    string
	Footer    string
	Signature string
}

// BrowserImages maps the set to URLs the in-app preview can load directly.
// Static paths are served under /static/.
func (s AssetSet) BrowserImages() PreviewImages {
	return PreviewImages{Header: browserURL(s.Header), Signature: browserURL(s.Signature)}
}

func browserURL(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	}
	return "/static/" + strings.TrimPrefix(strings.TrimPrefix(ref, "/"), "static/")
}

// Asset is a fetched image payload.
type Asset struct {
	Name      string
	Data      []byte
	MIME      string
	Extension string
}

// DataURI inlines the asset for the headless renderer.
func (a Asset) DataURI() string {
	return "data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// ExportAssets holds the images for one export call.
type ExportAssets struct {
	Header    Asset
	Footer    Asset
	Signature Asset
}

// AssetFetcher retrieves one image by reference.
type AssetFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FetchExportAssets fetches every image once. Any failure aborts the whole
// export.
func FetchExportAssets(ctx context.Context, f AssetFetcher, set AssetSet) (ExportAssets, error) {
	var out ExportAssets
	targets := []struct {
		name string
		ref  string
		dst  *Asset
	}{
		{"header", set.Header, &out.Header},
		{"footer", set.Footer, &out.Footer},
		{"signature", set.Signature, &out.Signature},
	}
	for _, tgt := range targets {
		a, err := fetchAsset(ctx, f, tgt.name, tgt.ref)
		if err != nil {
			return ExportAssets{}, err
		}
		*tgt.dst = a
	}
	return out, nil
}

func fetchAsset(ctx context.Context, f AssetFetcher, name, ref string) (Asset, error) {
	if strings.TrimSpace(ref) == "" {
		return Asset{}, fmt.Errorf("%w: %s image is not configured", ErrAssetFetch, name)
	}
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %s image %s: %v", ErrAssetFetch, name, ref, err)
	}
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("image/png"), mt.Is("image/jpeg"):
	default:
		return Asset{}, fmt.Errorf("%w: %s image %s is %s, want png or jpeg", ErrAssetFetch, name, ref, mt.String())
	}
	return Asset{Name: name, Data: data, MIME: mt.String(), Extension: strings.TrimPrefix(mt.Extension(), ".")}, nil
}

// StaticFetcher reads http(s) references over the network and everything
// else from a local filesystem.
type StaticFetcher struct {
	Files  fs.FS
	Client *http.Client
}

// Fetch implements AssetFetcher.
func (s StaticFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return s.fetchURL(ctx, ref)
	}
	if s.Files == nil {
		return nil, fmt.Errorf("no static filesystem for %s", ref)
	}
	return fs.ReadFile(s.Files, strings.TrimPrefix(strings.TrimPrefix(ref, "/"), "static/"))
}

func (s StaticFetcher) fetchURL(ctx context.Context, url string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

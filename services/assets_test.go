package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestStaticFetcher_Files(t *testing.T) {
	png := pngBytes(t, 4, 4)
	fetcher := StaticFetcher{Files: fstest.MapFS{
		"assets/header.png": {Data: png},
	}}

	for _, ref := range []string{"assets/header.png", "/assets/header.png", "/static/assets/header.png"} {
		data, err := fetcher.Fetch(context.Background(), ref)
		if err != nil {
			t.Errorf("Fetch(%q) error = %v", ref, err)
			continue
		}
		if len(data) != len(png) {
			t.Errorf("Fetch(%q) returned %d bytes", ref, len(data))
		}
	}

	if _, err := fetcher.Fetch(context.Background(), "assets/missing.png"); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestStaticFetcher_HTTP(t *testing.T) {
	png := pngBytes(t, 4, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/logo.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(png)
	}))
	defer srv.Close()

	fetcher := StaticFetcher{Client: srv.Client()}
	if _, err := fetcher.Fetch(context.Background(), srv.URL+"/logo.png"); err != nil {
		t.Errorf("Fetch() error = %v", err)
	}
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/gone.png")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestFetchExportAssets(t *testing.T) {
	fetcher := allAssets(t)
	set := AssetSet{Header: "header.png", Footer: "footer.png", Signature: "signature.png"}

	assets, err := FetchExportAssets(context.Background(), fetcher, set)
	if err != nil {
		t.Fatalf("FetchExportAssets() error = %v", err)
	}
	if assets.Header.MIME != "image/png" || assets.Header.Extension != "png" {
		t.Errorf("Header = %s/%s", assets.Header.MIME, assets.Header.Extension)
	}
	if !strings.HasPrefix(assets.Signature.DataURI(), "data:image/png;base64,") {
		t.Errorf("DataURI = %.30s", assets.Signature.DataURI())
	}

	set.Footer = ""
	if _, err := FetchExportAssets(context.Background(), fetcher, set); !errors.Is(err, ErrAssetFetch) {
		t.Errorf("expected ErrAssetFetch for an unconfigured image, got %v", err)
	}
}

func TestAssetSet_BrowserImages(t *testing.T) {
	set := AssetSet{Header: "static/img/header.png", Signature: "https://cdn.example.com/firma.png"}
	got := set.BrowserImages()
	if got.Header != "/static/img/header.png" {
		t.Errorf("Header = %q", got.Header)
	}
	if got.Signature != "https://cdn.example.com/firma.png" {
		t.Errorf("Signature = %q", got.Signature)
	}
	if (AssetSet{}).BrowserImages() != (PreviewImages{}) {
		t.Error("blank refs should stay blank")
	}
}

package dictionary

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDictionary_LocalCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jmdict-test.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// The file exists, so nothing is downloaded.
	if err := EnsureDictionary(context.Background(), path); err != nil {
		t.Fatalf("EnsureDictionary failed with local file: %v", err)
	}
}

func TestEnsureDictionary_Download(t *testing.T) {
	payload := []byte(`{"words":[{"id":"1","kanji":[{"text":"風","common":true}],"kana":[{"text":"かぜ"}],"sense":[{"gloss":[{"text":"wind"}]}]}]}`)
	var archive bytes.Buffer
	gz := gzip.NewWriter(&archive)
	tw := tar.NewWriter(gz)
	tw.WriteHeader(&tar.Header{Name: "jmdict-eng-common-3.6.1.json", Mode: 0o644, Size: int64(len(payload)), Typeflag: tar.TypeReg})
	tw.Write(payload)
	tw.Close()
	gz.Close()

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/release":
			fmt.Fprintf(w, `{"assets":[{"name":"jmdict-eng-3.6.1.json.tgz","browser_download_url":"%[1]s/wrong"},{"name":"jmdict-eng-common-3.6.1.json.tgz","browser_download_url":"%[1]s/dict.tgz"}]}`, srv.URL)
		case "/dict.tgz":
			w.Write(archive.Bytes())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	old := releaseAPIURL
	releaseAPIURL = srv.URL + "/release"
	defer func() { releaseAPIURL = old }()

	path := filepath.Join(t.TempDir(), "jmdict.json")
	if err := EnsureDictionary(context.Background(), path); err != nil {
		t.Fatalf("EnsureDictionary: %v", err)
	}
	entries, err := LoadJMdictSimplified(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 1 || entries[0].Kanji[0].Text != "風" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

package ckan_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"culture_hotspots/internal/adapters/ckan"
)

const csvBody = "_id,NAME,TYPE\n1,Art Gallery,Museum\n"

func portal(t *testing.T, resource map[string]any, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/3/action/resource_show", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") != "res-1" {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   map[string]any{"message": "Not found", "__type": "Not Found Error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": resource})
	})
	mux.HandleFunc("/api/3/action/package_show", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "result": map[string]any{
			"resources": []map[string]any{
				{"id": "readme", "format": "PDF"},
				{"id": "res-1", "format": "csv", "datastore_active": true},
			},
		}})
	})
	mux.HandleFunc("/files/hotspots.csv", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil && atomic.AddInt32(hits, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, csvBody)
	})
	mux.HandleFunc("/datastore/dump/res-1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, csvBody)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func TestSource_ResolvesAndDownloadsWithRetry(t *testing.T) {
	var hits int32
	var ts *httptest.Server
	res := map[string]any{"id": "res-1", "format": "CSV"}
	ts = portal(t, res, &hits)
	res["url"] = ts.URL + "/files/hotspots.csv"

	cl, err := ckan.New(ts.URL, "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src := cl.Source("res-1")
	if src.Name() != "ckan:res-1" {
		t.Fatalf("name: %s", src.Name())
	}
	rc, err := src.Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readAll(t, rc); got != csvBody {
		t.Fatalf("body: %q", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected retries, got %d calls", hits)
	}
}

func TestSource_PrefersDatastoreDump(t *testing.T) {
	ts := portal(t, map[string]any{"id": "res-1", "datastore_active": true}, nil)
	cl, _ := ckan.New(ts.URL, "", 100)

	rc, err := cl.Source("res-1").Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readAll(t, rc); got != csvBody {
		t.Fatalf("body: %q", got)
	}
}

func TestResourceShow_Unsuccessful(t *testing.T) {
	ts := portal(t, nil, nil)
	cl, _ := ckan.New(ts.URL, "", 100)

	_, err := cl.ResourceShow(context.Background(), "missing")
	if !errors.Is(err, ckan.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestDownload_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	cl, _ := ckan.New(ts.URL, "", 100)

	_, err := cl.Download(context.Background(), ts.URL+"/nothing.csv")
	if !errors.Is(err, ckan.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadURL_MissingURL(t *testing.T) {
	cl, _ := ckan.New("http://portal.example", "", 1)
	if _, err := cl.DownloadURL(ckan.Resource{ID: "x"}); err == nil {
		t.Fatalf("expected error for resource without url")
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := ckan.New("", "", 1); err == nil {
		t.Fatalf("expected error for empty base")
	}
}

func TestPackageSource_PicksCSVResource(t *testing.T) {
	ts := portal(t, nil, nil)
	cl, _ := ckan.New(ts.URL, "", 100)

	src := cl.PackageSource("cultural-hotspots")
	if src.Name() != "ckan:package:cultural-hotspots" {
		t.Fatalf("name: %s", src.Name())
	}
	rc, err := src.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := readAll(t, rc); got != csvBody {
		t.Fatalf("body: %q", got)
	}
}

func TestCSVResource(t *testing.T) {
	rs := []ckan.Resource{
		{ID: "a", Format: "XLSX"},
		{ID: "b", Format: "CSV"},
		{ID: "c", Format: "csv", DatastoreActive: true},
	}
	r, ok := ckan.CSVResource(rs)
	if !ok || r.ID != "c" {
		t.Fatalf("got %+v %v", r, ok)
	}
	r, ok = ckan.CSVResource(rs[:2])
	if !ok || r.ID != "b" {
		t.Fatalf("got %+v %v", r, ok)
	}
	if _, ok := ckan.CSVResource(rs[:1]); ok {
		t.Fatalf("expected no csv resource")
	}
}

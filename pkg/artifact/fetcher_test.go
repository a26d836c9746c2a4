// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package artifact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coderRaj07/POC-BrowserDAO/pkg/faults"
)

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidate.json")
	if err := os.WriteFile(path, []byte(`{"title":"B"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &FileFetcher{}
	a, err := f.Fetch(context.Background(), "file://"+path)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if a.ContentType() != TypeJSON {
		t.Errorf("ContentType() = %q", a.ContentType())
	}
	if string(a.Bytes()) != `{"title":"B"}` {
		t.Errorf("Bytes() = %q", a.Bytes())
	}
}

func TestFileFetcher_Errors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(big, make([]byte, 64), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &FileFetcher{MaxBytes: 16}
	for _, loc := range []string{filepath.Join(dir, "missing.json"), dir, big} {
		_, err := f.Fetch(context.Background(), loc)
		if !faults.IsKind(err, faults.KindFetch) {
			t.Errorf("Fetch(%q) error = %v, want FetchError", loc, err)
		}
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "sealed-proof-test" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"A","items":[1,2,3]}`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "sealed-proof-test", Digests: []string{DigestBlake2b}})

	a, err := f.Fetch(context.Background(), srv.URL+"/ref")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if a.ContentType() != TypeJSON || a.Digest(DigestBlake2b) == "" {
		t.Errorf("unexpected artifact: type=%s digests=%v", a.ContentType(), a.Digests())
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	if !faults.IsKind(err, faults.KindFetch) {
		t.Errorf("404 error = %v, want FetchError", err)
	}
}

func TestHTTPFetcher_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBytes: 10})
	if _, err := f.Fetch(context.Background(), srv.URL); !faults.IsKind(err, faults.KindFetch) {
		t.Errorf("oversized body error = %v, want FetchError", err)
	}
}

func TestHTTPFetcher_ConcurrencyCap(t *testing.T) {
	var inFlight, peak int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxConcurrent: 2})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
				t.Errorf("Fetch() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("peak concurrent requests = %d, want <= 2", peak)
	}
}

func TestHTTPFetcher_CancelledWhileWaiting(t *testing.T) {
	f := NewHTTPFetcher(HTTPOptions{MaxConcurrent: 1})
	f.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "http://127.0.0.1:1/"); !faults.IsKind(err, faults.KindFetch) {
		t.Errorf("error = %v, want FetchError", err)
	}
}

func TestRouter(t *testing.T) {
	var got []string
	record := func(name string) Fetcher {
		return FetcherFunc(func(_ context.Context, loc string) (*Artifact, error) {
			got = append(got, name+":"+loc)
			return New(loc, TypeText, nil), nil
		})
	}
	r := &Router{File: record("file"), HTTP: record("http")}

	for _, loc := range []string{"https://a/b", "HTTP://a", "/tmp/x.json", "file:///tmp/y", `C:\data\z.csv`} {
		if _, err := r.Fetch(context.Background(), loc); err != nil {
			t.Fatalf("Fetch(%q) error = %v", loc, err)
		}
	}
	want := []string{"http:https://a/b", "http:HTTP://a", "file:/tmp/x.json", "file:file:///tmp/y", `file:C:\data\z.csv`}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("route[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := r.Fetch(context.Background(), "ftp://a/b"); !faults.IsKind(err, faults.KindFetch) {
		t.Errorf("ftp error = %v, want FetchError", err)
	}
	if _, err := r.Fetch(context.Background(), ""); !faults.IsKind(err, faults.KindFetch) {
		t.Errorf("empty locator error = %v, want FetchError", err)
	}
}

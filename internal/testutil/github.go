package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeGitHub serves a linear history through the GitHub REST endpoints the
// remote backend uses: repository info, branches, single commits and
// commit listings.
type FakeGitHub struct {
	Owner string
	Repo  string

	mu        sync.Mutex
	times     []time.Time // tip first
	refs      map[string]int
	listCalls int
	getCalls  int
	failList  bool
	server    *httptest.Server
}

// NewFakeGitHub starts a server for owner/repo whose history has the given
// committer times, tip first. "master" is the default branch at the tip.
func NewFakeGitHub(t testing.TB, owner, repo string, times ...time.Time) *FakeGitHub {
	t.Helper()
	f := &FakeGitHub{
		Owner: owner,
		Repo:  repo,
		times: times,
		refs:  map[string]int{"master": 0},
	}
	f.server = httptest.NewServer(f.mux())
	t.Cleanup(f.server.Close)
	return f
}

// URL is the server root, usable as a GitHub Enterprise base URL.
func (f *FakeGitHub) URL() string {
	return f.server.URL + "/"
}

// Sha returns the SHA of the i-th commit, counted from the tip.
func (f *FakeGitHub) Sha(i int) string {
	return fmt.Sprintf("%040x", i+1)
}

// SetRef points a branch or tag name at the i-th commit.
func (f *FakeGitHub) SetRef(name string, i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[name] = i
}

// FailListings makes commit listings answer 500.
func (f *FakeGitHub) FailListings() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = true
}

// ListCalls returns how many commit listings were served.
func (f *FakeGitHub) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// GetCalls returns how many single-commit lookups were served.
func (f *FakeGitHub) GetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls
}

func (f *FakeGitHub) index(ref string) (int, bool) {
	if i, ok := f.refs[ref]; ok {
		return i, true
	}
	for i := range f.times {
		if f.Sha(i) == ref {
			return i, true
		}
	}
	return 0, false
}

func (f *FakeGitHub) commitJSON(i int) map[string]any {
	parents := []map[string]any{}
	if i+1 < len(f.times) {
		parents = append(parents, map[string]any{"sha": f.Sha(i + 1)})
	}
	return map[string]any{
		"sha": f.Sha(i),
		"commit": map[string]any{
			"message":   fmt.Sprintf("[IMP] commit %d\n\nbody", i),
			"committer": map[string]any{"date": f.times[i].Format(time.RFC3339)},
			"author":    map[string]any{"date": f.times[i].Add(-time.Minute).Format(time.RFC3339)},
		},
		"parents": parents,
	}
}

func (f *FakeGitHub) mux() *http.ServeMux {
	prefix := fmt.Sprintf("/api/v3/repos/%s/%s", f.Owner, f.Repo)
	mux := http.NewServeMux()

	mux.HandleFunc(prefix, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"default_branch": "master"})
	})

	mux.HandleFunc(prefix+"/branches/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		name := strings.TrimPrefix(r.URL.Path, prefix+"/branches/")
		i, ok := f.refs[name]
		if !ok {
			http.Error(w, `{"message":"Branch not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"name": name, "commit": f.commitJSON(i)})
	})

	mux.HandleFunc(prefix+"/commits", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.listCalls++
		if f.failList {
			http.Error(w, `{"message":"Server Error"}`, http.StatusInternalServerError)
			return
		}
		start, ok := f.index(r.URL.Query().Get("sha"))
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
		if err != nil || perPage <= 0 {
			perPage = 30
		}
		end := min(start+perPage, len(f.times))
		page := []map[string]any{}
		for i := start; i < end; i++ {
			page = append(page, f.commitJSON(i))
		}
		writeJSON(w, page)
	})

	mux.HandleFunc(prefix+"/commits/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.getCalls++
		ref := strings.TrimPrefix(r.URL.Path, prefix+"/commits/")
		i, ok := f.index(ref)
		if !ok {
			http.Error(w, `{"message":"No commit found for SHA: `+ref+`"}`, http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, f.commitJSON(i))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(err)
	}
}

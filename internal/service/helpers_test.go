package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"storefront-checkout/internal/upstream"
)

// fakeMarketplace is a scriptable stand-in for the upstream API.
type fakeMarketplace struct {
	server *httptest.Server
	hits   int64
	handle func(w http.ResponseWriter, r *http.Request)
}

func newFakeMarketplace(handle func(w http.ResponseWriter, r *http.Request)) *fakeMarketplace {
	fm := &fakeMarketplace{handle: handle}
	fm.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&fm.hits, 1)
		fm.handle(w, r)
	}))
	return fm
}

func (fm *fakeMarketplace) Close() { fm.server.Close() }

func (fm *fakeMarketplace) Hits() int64 { return atomic.LoadInt64(&fm.hits) }

func (fm *fakeMarketplace) client() *upstream.Client {
	return upstream.NewClient(fm.server.URL, 2*time.Second, 0)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

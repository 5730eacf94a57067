package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"auction-engine/internal/assets"
	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"

	"github.com/gin-gonic/gin"
)

// testEnv bundles the wired application pieces so tests can both drive the
// HTTP surface and reach behind it to seed state or force expiry.
type testEnv struct {
	router   *gin.Engine
	store    *repository.MemoryStore
	registry *assets.InMemoryRegistry
	service  *bidding.BiddingService
}

// SetupTestEnv wires the full stack on the in-memory store, with the given
// assets pre-owned.
func SetupTestEnv(owners map[string]string) *testEnv {
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	registry := assets.NewInMemoryRegistry()
	for nftRef, owner := range owners {
		registry.SetOwner(nftRef, owner)
	}

	service := bidding.NewBiddingService(store, registry, nil, nil)
	router := server.SetupRouter(service, nil)

	return &testEnv{
		router:   router,
		store:    store,
		registry: registry,
		service:  service,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the env's router and
// parses the JSON envelope.
func (e *testEnv) ExecuteRequestAndParse(t *testing.T, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// data extracts the "data" object from a response envelope.
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return d
}

// forceExpiry closes every auction whose end time has passed the given
// moment, as the background sweeper would.
func (e *testEnv) forceExpiry(t *testing.T, at time.Time) int {
	t.Helper()
	closed, err := e.service.CloseExpiredAuctions(at)
	if err != nil {
		t.Fatalf("failed to close expired auctions: %v", err)
	}
	return closed
}

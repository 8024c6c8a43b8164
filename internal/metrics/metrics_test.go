package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()

	assert.NotNil(t, pagesFetchedTotal)
	assert.NotNil(t, entriesEmittedTotal)
	assert.NotNil(t, structuralMissesTotal)
}

func TestObserversAreSafeAndExposed(t *testing.T) {
	Init()

	ObserveFetch("CA", "200", 0.4)
	ObserveEntries("CA", 3)
	ObserveEntries("CA", 0)
	ObserveStructuralMiss("TX")
	ObserveGridDropped("WV")
	ObserveRun("CA", "ok", 1.25)
	WorkerStarted()
	WorkerStopped()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "warn_pages_fetched_total")
	assert.Contains(t, body, "warn_entries_emitted_total")
	assert.Contains(t, body, "warn_structural_misses_total")
}

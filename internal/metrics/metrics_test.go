package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveEvaluation(t *testing.T) {
	before := testutil.ToFloat64(evaluations.WithLabelValues("risk", "RED"))
	ObserveEvaluation("risk", "RED", time.Now())
	ObserveEvaluation("risk", "RED", time.Now())

	if got := testutil.ToFloat64(evaluations.WithLabelValues("risk", "RED")) - before; got != 2 {
		t.Errorf("evaluations delta = %v, want 2", got)
	}
}

func TestObserveReload(t *testing.T) {
	okBefore := testutil.ToFloat64(catalogReloads.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(catalogReloads.WithLabelValues("error"))

	ObserveReload(nil)
	ObserveReload(errors.New("bad yaml"))

	if got := testutil.ToFloat64(catalogReloads.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok reloads delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(catalogReloads.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error reloads delta = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveLookup(LookupFound)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "protectwatch_registry_lookups_total") {
		t.Error("expected lookups counter in /metrics output")
	}
}

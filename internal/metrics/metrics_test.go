package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveResolution("ok")
	m.ObserveResolution("ok")
	m.ObserveResolution("unauthenticated")
	m.ObserveNavigation("saved", "view")
	m.ObserveNavigation("resume", "external")
	m.ObserveLogout()
	m.ShellMounted(1)
	m.ShellMounted(1)
	m.ShellMounted(-1)

	if got := testutil.ToFloat64(m.resolutions.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok resolutions, got %v", got)
	}
	if got := testutil.ToFloat64(m.navigations.WithLabelValues("resume", "external")); got != 1 {
		t.Errorf("Expected 1 external navigation, got %v", got)
	}
	if got := testutil.ToFloat64(m.logouts); got != 1 {
		t.Errorf("Expected 1 logout, got %v", got)
	}
	if got := testutil.ToFloat64(m.shells); got != 1 {
		t.Errorf("Expected 1 mounted shell, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveResolution("ok")
	m.ObserveNavigation("home", "view")
	m.ObserveLogout()
	m.ShellMounted(1)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 from nil metrics handler, got %d", w.Code)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveLogout()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Result().Body)
	if !strings.Contains(string(body), "joblink_logouts_total 1") {
		t.Errorf("Expected logout counter in exposition, got:\n%s", body)
	}
}

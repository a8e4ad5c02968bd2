// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/dashgen/pkg/util/version"
)

func newRunRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(version.NewCollector())
	return reg
}

func TestGenerateCommand_MetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashgen.prom")
	cmd := &GenerateCommand{
		metrics:   MetricsConfig{Textfile: path},
		fs:        afero.NewMemMapFs(),
		logConfig: nopLogConfig(),
		reg:       newRunRegistry(),
	}
	require.NoError(t, cmd.Run(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, "dashgen_dashboards_generated_total 2\n")
	assert.Contains(t, out, `dashgen_dashboards_failed_total{reason="emit"} 0`)
	assert.Contains(t, out, "# TYPE dashgen_build_info gauge\n")
}

func TestGenerateCommand_MetricsTextfileAfterFailedRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashgen.prom")
	cmd := &GenerateCommand{
		metrics:   MetricsConfig{Textfile: path},
		fs:        afero.NewReadOnlyFs(afero.NewMemMapFs()),
		logConfig: nopLogConfig(),
		reg:       newRunRegistry(),
	}
	require.Error(t, cmd.Run(context.Background()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `dashgen_dashboards_failed_total{reason="emit"} 1`)
	assert.Contains(t, string(raw), "dashgen_dashboards_generated_total 0\n")
}

type pushRecorder struct {
	mtx    sync.Mutex
	method string
	path   string
	body   []byte
	status int
}

func (p *pushRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.method, p.path, p.body = r.Method, r.URL.Path, body
	if p.status != 0 {
		w.WriteHeader(p.status)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func TestGenerateCommand_MetricsPush(t *testing.T) {
	rec := &pushRecorder{}
	srv := httptest.NewServer(rec)
	t.Cleanup(srv.Close)

	cmd := &GenerateCommand{
		metrics:   MetricsConfig{PushURL: srv.URL, PushJob: "nightly-dashboards"},
		fs:        afero.NewMemMapFs(),
		logConfig: nopLogConfig(),
		reg:       newRunRegistry(),
	}
	require.NoError(t, cmd.Run(context.Background()))

	rec.mtx.Lock()
	defer rec.mtx.Unlock()
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/metrics/job/nightly-dashboards", rec.path)
	assert.Contains(t, string(rec.body), "dashgen_dashboards_generated_total")
	assert.Contains(t, string(rec.body), "dashgen_build_info")
}

func TestMetricsConfig_ExportCombinesFailures(t *testing.T) {
	srv := httptest.NewServer(&pushRecorder{status: http.StatusInternalServerError})
	t.Cleanup(srv.Close)

	m := MetricsConfig{
		Textfile: filepath.Join(t.TempDir(), "missing", "dashgen.prom"),
		PushURL:  srv.URL,
	}
	err := m.Export(context.Background(), newRunRegistry(), log.NewNopLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing metrics to")
	assert.Contains(t, err.Error(), "pushing metrics to "+srv.URL)
}

func TestMetricsConfig_Disabled(t *testing.T) {
	var m MetricsConfig
	assert.False(t, m.enabled())
	require.NoError(t, m.Export(context.Background(), newRunRegistry(), log.NewNopLogger()))
}

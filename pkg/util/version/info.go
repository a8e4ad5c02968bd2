// SPDX-License-Identifier: AGPL-3.0-only

// Package version reports which build of dashgen is running: on the command
// line, in logs, as a metric and in the User-Agent of outgoing requests.
package version

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const unknown = "unknown"

// Set at build time through -ldflags "-X". Left unset, Revision falls back to
// the VCS stamp of the Go toolchain when there is one.
var (
	Version  = unknown
	Revision = unknown
	Branch   = unknown
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	Revision  string
	Branch    string
	GoVersion string
	Platform  string
	// Modified is set when the binary was built from a dirty tree.
	Modified bool
}

// Get returns the build information of the running binary.
func Get() BuildInfo {
	bi := BuildInfo{
		Version:   Version,
		Revision:  Revision,
		Branch:    Branch,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi.Revision != unknown {
		return bi
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		bi.applyVCS(info.Settings)
	}
	return bi
}

func (bi *BuildInfo) applyVCS(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			bi.Revision = s.Value
			if len(bi.Revision) > 12 {
				bi.Revision = bi.Revision[:12]
			}
		case "vcs.modified":
			bi.Modified = s.Value == "true"
		}
	}
}

func (bi BuildInfo) revision() string {
	if bi.Modified {
		return bi.Revision + "-modified"
	}
	return bi.Revision
}

var buildInfoDesc = prometheus.NewDesc(
	"dashgen_build_info",
	"A constant 1 labeled with the version, revision, branch and Go version dashgen was built from.",
	[]string{"version", "revision", "branch", "goversion"},
	nil,
)

type collector struct {
	info BuildInfo
}

// NewCollector returns a collector exporting dashgen_build_info.
func NewCollector() prometheus.Collector {
	return collector{info: Get()}
}

func (c collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- buildInfoDesc
}

func (c collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(buildInfoDesc, prometheus.GaugeValue, 1,
		c.info.Version, c.info.revision(), c.info.Branch, c.info.GoVersion)
}

// Print returns the output of the version command.
func Print(program string) string {
	bi := Get()
	var b strings.Builder
	fmt.Fprintf(&b, "%s, version %s (branch: %s, revision: %s)\n", program, bi.Version, bi.Branch, bi.revision())
	fmt.Fprintf(&b, "  go version:       %s\n", bi.GoVersion)
	fmt.Fprintf(&b, "  platform:         %s", bi.Platform)
	return b.String()
}

// Info returns version, branch and revision on a single line, for logs.
func Info() string {
	bi := Get()
	return fmt.Sprintf("(version=%s, branch=%s, revision=%s)", bi.Version, bi.Branch, bi.revision())
}

// UserAgent is sent with every request dashgen makes.
func UserAgent() string {
	return "dashgen/" + Version
}

type userAgentTransport struct {
	next http.RoundTripper
}

// Transport wraps next, or http.DefaultTransport if nil, so that requests
// carry the dashgen User-Agent unless they already set one.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return userAgentTransport{next: next}
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent())
	}
	return t.next.RoundTrip(req)
}

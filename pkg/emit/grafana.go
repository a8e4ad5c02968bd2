// SPDX-License-Identifier: AGPL-3.0-only

package emit

import (
	"context"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana-tools/sdk"
	"github.com/pkg/errors"

	"github.com/grafana/dashgen/pkg/util/version"
)

// GrafanaEmitter pushes documents to a Grafana instance, replacing any
// dashboard with the same uid.
type GrafanaEmitter struct {
	client  *sdk.Client
	address string
	timeout time.Duration
	logger  log.Logger
}

func NewGrafanaEmitter(address, apiKey string, timeout time.Duration, logger log.Logger) (*GrafanaEmitter, error) {
	c, err := sdk.NewClient(address, apiKey, &http.Client{Transport: version.Transport(nil)})
	if err != nil {
		return nil, errors.Wrap(err, "creating Grafana client")
	}
	return &GrafanaEmitter{client: c, address: address, timeout: timeout, logger: logger}, nil
}

func (e *GrafanaEmitter) Emit(ctx context.Context, doc Document) error {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if _, err := e.client.SetRawDashboard(ctx, doc.Body); err != nil {
		return &IOError{Path: e.address, Err: errors.Wrapf(err, "pushing dashboard %s", doc.Name)}
	}

	level.Info(e.logger).Log("msg", "pushed dashboard", "dashboard", doc.Name, "grafana", e.address)
	return nil
}

// SPDX-License-Identifier: AGPL-3.0-only

package dashboard

// DataSourceRef references a Grafana data source by plugin type and uid.
type DataSourceRef struct {
	// Type is the data source plugin, like "prometheus" or "loki".
	Type string
	// UID identifies the data source instance.
	UID string
}

func (r DataSourceRef) validate() error {
	if r.Type == "" {
		return invalid("datasource.type", "must not be empty")
	}
	if r.UID == "" {
		return invalid("datasource.uid", "must not be empty")
	}
	if err := validateText("datasource.type", r.Type); err != nil {
		return err
	}
	return validateText("datasource.uid", r.UID)
}

func (r DataSourceRef) IsZero() bool {
	return r == DataSourceRef{}
}

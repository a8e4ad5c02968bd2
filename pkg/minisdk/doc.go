// SPDX-License-Identifier: AGPL-3.0-only

/*
Package minisdk contains a minimal read-side model of Grafana dashboard JSON.

It only keeps the parts needed to check generated documents and to find the
queries they contain, so that documents produced by other tools or by newer
Grafana versions still decode.
*/
package minisdk

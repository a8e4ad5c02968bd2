// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/grafana/dashgen/pkg/catalog"
)

// ListCommand prints the dashboards that can be generated.
type ListCommand struct {
	out io.Writer
}

func (cmd *ListCommand) Register(app *kingpin.Application) {
	cmd.out = os.Stdout
	app.Command("list", "List the dashboards that can be generated and their file names.").Action(cmd.run)
}

func (cmd *ListCommand) run(_ *kingpin.ParseContext) error {
	for _, def := range catalog.All() {
		if _, err := fmt.Fprintf(cmd.out, "%s\t%s\n", def.Name, def.FileName); err != nil {
			return err
		}
	}
	return nil
}

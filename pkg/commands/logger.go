// SPDX-License-Identifier: AGPL-3.0-only

package commands

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	dslog "github.com/grafana/dskit/log"
)

// LoggerConfig configures the logger shared by every command.
type LoggerConfig struct {
	Level  dslog.Level
	Format string

	logger log.Logger
}

// Register adds the logging flags. It must be called before the commands
// using Logger are registered.
func (l *LoggerConfig) Register(app *kingpin.Application, envVars EnvVarNames) {
	app.Flag("log.level", "Only log messages with the given severity or above. Valid levels: [debug, info, warn, error]").
		Envar(envVars.LogLevel).
		Default("info").
		SetValue(&l.Level)
	app.Flag("log.format", "Output log messages in the given format. Valid formats: [logfmt, json]").
		Default(dslog.LogfmtFormat).
		EnumVar(&l.Format, dslog.LogfmtFormat, dslog.JSONFormat)

	app.PreAction(func(*kingpin.ParseContext) error {
		l.logger = l.newLogger(log.NewSyncWriter(os.Stderr))
		return nil
	})
}

func (l *LoggerConfig) newLogger(w io.Writer) log.Logger {
	logger := level.NewFilter(dslog.NewGoKitWithWriter(l.Format, w), l.Level.Option)
	return log.With(logger, "ts", log.DefaultTimestampUTC)
}

// Logger returns the configured logger, or an info level logfmt logger if
// the flags have not been parsed.
func (l *LoggerConfig) Logger() log.Logger {
	if l.logger == nil {
		logger := level.NewFilter(log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)), level.AllowInfo())
		l.logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	}
	return l.logger
}

package main

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/schemakit/adapters/dbconn"
	"github.com/artpar/schemakit/adapters/modreader"
	"github.com/artpar/schemakit/core/formatter"
)

// Overridden with -ldflags "-X main.version=..." in release builds.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Long: `Print the schemakit version, the VCS revision it was built from and the
module formats, output formats and database drivers compiled in.

Builds without ldflags take the revision and time from the Go build info.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := formatter.Lookup(outputFormat)
		if err != nil {
			return err
		}
		return f.FormatList(os.Stdout, []string{"key", "value"}, buildInfo(), formatter.FormatOptions{})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildInfo merges ldflags values with the VCS stamps of the Go build.
func buildInfo() []map[string]any {
	rev, built, modified := commit, buildDate, false
	goVersion := runtime.Version()
	if info, ok := debug.ReadBuildInfo(); ok {
		goVersion = info.GoVersion
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if rev == "" {
					rev = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			case "vcs.modified":
				modified = s.Value == "true"
			}
		}
	}
	if rev == "" {
		rev = "unknown"
	} else if modified {
		rev += "-dirty"
	}
	if built == "" {
		built = "unknown"
	}

	row := func(k, v string) map[string]any { return map[string]any{"key": k, "value": v} }
	return []map[string]any{
		row("version", version),
		row("commit", rev),
		row("built", built),
		row("go", goVersion),
		row("platform", runtime.GOOS+"/"+runtime.GOARCH),
		row("modules", strings.Join(modreader.New().Extensions(), " ")),
		row("formats", strings.Join(formatter.List(), " ")),
		row("drivers", strings.Join(dbconn.Drivers(), " ")),
	}
}

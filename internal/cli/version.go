package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/output"
)

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func newVersionCommand(rt *runtimeState) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show eclipse version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versionInfo{
				Version:   rt.opts.Version,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == output.FormatTable {
				_, _ = fmt.Fprintf(rt.out(), "eclipse %s (%s, %s)\n", info.Version, info.GoVersion, info.Platform)
				return nil
			}
			return output.WriteObject(rt.out(), f, info)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "", "Output format: json, yaml")
	return cmd
}

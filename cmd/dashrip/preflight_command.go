package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dashrip/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check the game installation, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Installation", colorize) {
				fmt.Fprintln(out, line)
			}
			probe := preflight.ProbeInstall(cfg.Paths.GameDir)
			probeKind := statusError
			if probe.Found {
				probeKind = statusOK
			}
			fmt.Fprintln(out, renderStatusLine("Muse Dash", probeKind, probe.Detail(), colorize))

			failed := 0
			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			for _, line := range renderSectionHeader("Tools", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				detail := status.Command
				switch {
				case status.Available:
				case status.Optional:
					kind = statusWarn
					detail = status.Detail
				default:
					kind = statusError
					detail = status.Detail
					failed++
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
			}

			if failed > 0 {
				return fmt.Errorf("%d preflight checks failed", failed)
			}
			fmt.Fprintln(out, "All preflight checks passed")
			return nil
		},
	}
}

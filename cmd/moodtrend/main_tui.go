//go:build tui

package main

import (
	"github.com/unowned-ai/moodtrend/pkg/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for recording check-ins and browsing insights.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Log lines on stderr would tear the alternate screen.
		a, err := openApp(cmd, quietUnlessSet(cmd))
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.ShowTUI(a.svc, a.cfg.ResolvedBackend())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

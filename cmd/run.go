package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/neuroveil/internal/app"
)

// runApp opens the store, wires the engines and launches the TUI.
func runApp(cmd *cobra.Command, opts app.Options) error {
	ctx := cmd.Context()
	cfg, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	rt, err := app.Bootstrap(ctx, cfg, st)
	if err != nil {
		return err
	}
	opts.Runtime = rt
	return app.Run(ctx, opts)
}

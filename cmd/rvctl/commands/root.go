package commands

import (
	"github.com/spf13/cobra"

	"rvmanagement/internal/config"
)

func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. The default margin comes from
// DEFAULT_MARGIN (or .env) unless --default-margin is given.
func NewRootCmd() *cobra.Command {
	var envFile string
	var defaultMargin float64

	root := &cobra.Command{
		Use:          "rvctl",
		Short:        "Pricing and barcode helper for rvmanagement",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("default-margin") {
				return nil
			}
			defaultMargin = config.Load(envFile).DefaultMargin
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "env file to read configuration from")
	root.PersistentFlags().Float64Var(&defaultMargin, "default-margin", 0.18, "default margin (overrides DEFAULT_MARGIN)")

	margin := func() float64 { return defaultMargin }
	root.AddCommand(barcodeCmd(), priceCmd(margin))
	return root
}

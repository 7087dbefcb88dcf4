package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rvmanagement/internal/pricing"
)

func priceCmd(defaultMargin func() float64) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Margin, sell price and cents calculations",
	}
	cmd.AddCommand(
		priceMarginCmd(defaultMargin),
		priceSellCmd(defaultMargin),
		priceUnitCmd(defaultMargin),
		priceCentsCmd(),
	)
	return cmd
}

func priceMarginCmd(defaultMargin func() float64) *cobra.Command {
	var buy, sell string
	cmd := &cobra.Command{
		Use:   "margin",
		Short: "Margin implied by a buy and sell price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def := defaultMargin()
			margin := pricing.DeriveMargin(buy, sell, def)
			marker := ""
			if pricing.IsDefaultMargin(margin, def, pricing.DefaultMarginTolerance) {
				marker = " (default)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strconv.FormatFloat(margin, 'f', 4, 64), marker)
			return nil
		},
	}
	cmd.Flags().StringVar(&buy, "buy", "", "buy price, e.g. 1.20")
	cmd.Flags().StringVar(&sell, "sell", "", "sell price, e.g. 1.50")
	return cmd
}

func priceSellCmd(defaultMargin func() float64) *cobra.Command {
	var buy string
	var margin float64
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Sell price for a buy price and margin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("margin") {
				margin = defaultMargin()
			}
			fmt.Fprintln(cmd.OutOrStdout(), pricing.DeriveSellPrice(buy, margin))
			return nil
		},
	}
	cmd.Flags().StringVar(&buy, "buy", "", "buy price")
	cmd.Flags().Float64Var(&margin, "margin", 0, "margin ratio (default: configured default margin)")
	return cmd
}

func priceUnitCmd(defaultMargin func() float64) *cobra.Command {
	var boxPrice string
	var perBox int
	var margin float64
	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Per-unit buy and sell price of a box",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if perBox < 1 {
				return fmt.Errorf("--per-box must be at least 1")
			}
			if !cmd.Flags().Changed("margin") {
				margin = defaultMargin()
			}
			unit := pricing.UnitBuyPriceFromBox(boxPrice, perBox)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "unit buy:  %s\n", unit)
			fmt.Fprintf(out, "unit sell: %s\n", pricing.DeriveSellPrice(unit, margin))
			fmt.Fprintf(out, "box value: %s\n", pricing.TotalValue(unit, perBox))
			return nil
		},
	}
	cmd.Flags().StringVar(&boxPrice, "box-price", "", "price of one box")
	cmd.Flags().IntVar(&perBox, "per-box", 0, "items per box")
	cmd.Flags().Float64Var(&margin, "margin", 0, "margin ratio (default: configured default margin)")
	return cmd
}

func priceCentsCmd() *cobra.Command {
	var positive bool
	cmd := &cobra.Command{
		Use:   "cents <value>",
		Short: "Convert a decimal price to integer cents, rounding up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			convert := pricing.CentsFromDecimalString
			if positive {
				convert = pricing.PositiveCentsFromDecimalString
			}
			cents, err := convert(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cents)
			return nil
		},
	}
	cmd.Flags().BoolVar(&positive, "positive", false, "reject zero as a buy-in would")
	return cmd
}

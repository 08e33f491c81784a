package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskgate",
	Short: "Capital-risk gate and execution scheduler for automated trading",
	Long: `Riskgate sits between a signal source and an exchange. Every candidate
trade passes a risk evaluation (Kelly sizing, VaR/CVaR, correlation,
slippage) and an ordered decision gate before any order is placed.

It provides:
  - A strategy loop that turns signals into approved or rejected decisions
  - An execution loop that places entries and supervises stops and targets
  - A portfolio store with atomic capital reservation and a circuit breaker
  - A SQLite journal of every signal, decision, and closed trade
  - An HTTP control surface with Prometheus metrics`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

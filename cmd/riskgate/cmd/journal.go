package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/riskgate/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the trade journal",
	Long: `Query the SQLite journal for recorded decisions and closed trades.

Examples:
  riskgate journal decisions --db riskgate.sqlite --days 7
  riskgate journal trades --db riskgate.sqlite`,
}

var journalDecisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List recent trade decisions",
	RunE:  runJournalDecisions,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List recent closed trades",
	RunE:  runJournalTrades,
}

var (
	journalDBPath string
	journalDays   int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalDecisionsCmd)
	journalCmd.AddCommand(journalTradesCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./riskgate.sqlite", "path to SQLite journal DB")
	journalCmd.PersistentFlags().IntVar(&journalDays, "days", 1, "how many days back to query")
}

func runJournalDecisions(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	end := time.Now()
	decisions, err := j.ListDecisionsBetween(end.AddDate(0, 0, -journalDays), end)
	if err != nil {
		return err
	}

	if len(decisions) == 0 {
		fmt.Println("no decisions in range")
		return nil
	}
	for _, d := range decisions {
		if d.Approved() {
			fmt.Printf("%s  %-10s %-5s APPROVED   $%.2f @ %.2f  RR %.1f\n",
				d.CreatedAt.Format(time.RFC3339), d.Pair, d.Direction,
				d.PositionSizeUSD, d.Entry.Price, d.RiskReward)
		} else {
			fmt.Printf("%s  %-10s %-5s REJECTED   %s\n",
				d.CreatedAt.Format(time.RFC3339), d.Pair, d.Direction, d.Reason)
		}
	}
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return err
	}
	defer j.Close()

	end := time.Now()
	trades, err := j.ListTradesBetween(end.AddDate(0, 0, -journalDays), end)
	if err != nil {
		return err
	}

	if len(trades) == 0 {
		fmt.Println("no trades in range")
		return nil
	}
	var total float64
	for _, t := range trades {
		total += t.PnL
		fmt.Printf("%s  %-10s %-5s %s  entry %.2f exit %.2f  pnl $%.2f (fees $%.2f)\n",
			t.ClosedAt.Format(time.RFC3339), t.Pair, t.Side, t.State,
			t.EntryPrice, t.ExitPrice, t.PnL, t.Fees)
	}
	fmt.Printf("\n%d trades, net pnl $%.2f\n", len(trades), total)
	return nil
}

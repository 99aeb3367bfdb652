package main

import (
	"fmt"
	"os"

	"github.com/climatrix/climatrix/db"
	"github.com/climatrix/climatrix/internal/config"
	"github.com/climatrix/climatrix/internal/logging"
	"github.com/climatrix/climatrix/internal/seed"
	"github.com/spf13/cobra"
)

var (
	reset bool
	hours int
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the Climatrix database with demo data",
	Long: `Creates three demo accounts (admin, johndoe, janesmith), hourly climate
readings for New Delhi, Mumbai and Bangalore, two active alerts and sample
community, pledge and supply chain records.`,
	SilenceUsage: true,
	RunE:         runSeed,
}

func init() {
	rootCmd.Flags().BoolVar(&reset, "reset", false, "delete all existing rows before seeding")
	rootCmd.Flags().IntVar(&hours, "hours", 24, "hours of readings to generate per city")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console"})

	gdb, err := db.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sum, err := seed.Run(cmd.Context(), gdb, seed.Options{Reset: reset, Hours: hours})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Database seeded:")
	fmt.Fprintf(out, "  users: %d\n  climate readings: %d\n  alerts: %d\n  groups: %d\n  posts: %d\n  pledges: %d\n  supply chain items: %d\n",
		sum.Users, sum.Readings, sum.Alerts, sum.Groups, sum.Posts, sum.Pledges, sum.SupplyChain)
	fmt.Fprintf(out, "Demo accounts use the password %q:\n", seed.DemoPassword)
	fmt.Fprintln(out, "  admin@climatrix.com (ADMIN)\n  john.doe@example.com (USER)\n  jane.smith@example.com (ANALYST)")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/dmsanchez/traysim/internal/factories"
	"github.com/dmsanchez/traysim/internal/loader"
	"github.com/dmsanchez/traysim/internal/models"
	"github.com/dmsanchez/traysim/internal/simclock"
	"github.com/dmsanchez/traysim/internal/simulator"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "traysim",
	Short: "Simulates multi-line, multi-shift packing production",
	Long: `traysim replays a packing plant's production plan on a virtual clock:
per-line shift starts, break windows and OEE derates, client order queues
with gated arrival times, and a hard shift-2 changeover. Every simulated
hour it publishes per-line and plant-wide snapshots to the configured
output, and a final summary when the run ends.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		lines, plan, err := loadPlant(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sim := simulator.NewSimulator(cfg, lines, plan)
		runErr := sim.Run(ctx)

		printReport(sim)

		if runErr != nil && !errors.Is(runErr, simulator.ErrSafetyBound) {
			return runErr
		}
		if errors.Is(runErr, simulator.ErrSafetyBound) {
			fmt.Fprintf(os.Stderr, "run aborted: %v\n", runErr)
			os.Exit(1)
		}
		return nil
	},
}

func loadPlant(cfg *models.Config) ([]models.LineShiftConfig, *models.ProductionPlan, error) {
	if cfg.Demo {
		pf := &factories.PlantFactory{}
		lines := pf.CreateLines(cfg.DemoLines, cfg.SecondShift)
		plan := pf.CreatePlan(lines, cfg.DemoClients, cfg.DemoItems)
		return lines, plan, nil
	}

	if cfg.LinesFile == "" || cfg.PlanFile == "" {
		return nil, nil, fmt.Errorf("lines_file and plan_file are required unless --demo is set")
	}

	lines, err := loader.LoadLineConfigs(cfg.LinesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading line configuration: %w", err)
	}
	plan, err := loader.LoadPlan(cfg.PlanFile, lines)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading production plan: %w", err)
	}
	return lines, plan, nil
}

func printReport(sim *simulator.Simulator) {
	fmt.Printf("\nRun %s: %s\n\n", sim.RunID, sim.Status)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Line/Shift\tProduced\tNet hours\tBreak hours\tEnd time")
	for _, row := range sim.FinalReport() {
		end := row.EndTime
		if row.Interrupted {
			end += " (interrupted)"
		}
		breaks := simclock.FormatNumber(row.BreakHours)
		if row.Label == "GLOBAL" {
			breaks = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.Label,
			simclock.FormatNumber(row.Produced),
			simclock.FormatNumber(row.NetHours),
			breaks,
			end,
		)
	}
	w.Flush()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().String("lines-file", "", "CSV with per-line shift configuration")
	rootCmd.Flags().String("plan-file", "", "CSV with the production plan")
	rootCmd.Flags().Bool("second-shift", false, "Activate shift 2 lines and the changeover")
	rootCmd.Flags().Duration("tick-interval", 0, "Real time per simulated hour (0 runs flat out)")
	rootCmd.Flags().Bool("demo", false, "Generate a demo plant instead of reading input files")
	rootCmd.Flags().Int("demo-lines", 4, "Number of demo lines")
	rootCmd.Flags().Bool("kafka-enabled", false, "Publish snapshots to Kafka")
	rootCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	rootCmd.Flags().String("output-format", "", "Output format: json, csv or parquet")
	rootCmd.Flags().String("output-path", "", "Output directory (console output when empty)")

	viper.BindPFlag("lines_file", rootCmd.Flags().Lookup("lines-file"))
	viper.BindPFlag("plan_file", rootCmd.Flags().Lookup("plan-file"))
	viper.BindPFlag("second_shift", rootCmd.Flags().Lookup("second-shift"))
	viper.BindPFlag("tick_interval", rootCmd.Flags().Lookup("tick-interval"))
	viper.BindPFlag("demo", rootCmd.Flags().Lookup("demo"))
	viper.BindPFlag("demo_lines", rootCmd.Flags().Lookup("demo-lines"))
	viper.BindPFlag("kafka_enabled", rootCmd.Flags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka_broker_list", rootCmd.Flags().Lookup("kafka-broker-list"))
	viper.BindPFlag("output_format", rootCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output_path", rootCmd.Flags().Lookup("output-path"))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

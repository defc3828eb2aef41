package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/SARSIM/internal/config"
	"github.com/copyleftdev/SARSIM/internal/logging"
	"github.com/copyleftdev/SARSIM/internal/montecarlo"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// options holds the flags shared by every batch command.
type options struct {
	scenarioFile string
	trials       int
	seed         uint64
	workers      int
	maxRounds    int
	jsonOutput   bool
	histogram    bool
	logLevel     string

	scenario *config.Scenario
	logger   *logging.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "sarsim",
		Short: "Bayesian search-and-rescue simulator",
		Long: `sarsim estimates how many search rounds a strategy needs to find a
target hidden in one of several map regions, revising each region's
probability with Bayes' rule after every unsuccessful round.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.scenarioFile, "scenario", "", "YAML scenario file (default: built-in Cape Python map)")
	pf.IntVarP(&opts.trials, "trials", "n", 0, "trials per strategy (default: SIM_TRIALS)")
	pf.Uint64Var(&opts.seed, "seed", 0, "base seed; 0 picks one from the clock")
	pf.IntVarP(&opts.workers, "workers", "w", 0, "trial pool size (default: SIM_WORKERS)")
	pf.IntVar(&opts.maxRounds, "max-rounds", 0, "round cap per trial (default: SIM_MAX_ROUNDS)")
	pf.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	pf.BoolVar(&opts.histogram, "histogram", false, "include the rounds histogram in table output")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(
		newSimulateCmd(opts),
		newCompareCmd(opts),
		newPlansCmd(opts),
	)
	return rootCmd
}

// load resolves configuration: environment first, then explicit flags.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.scenario = cfg.Scenario

	if o.scenarioFile != "" {
		sc, err := config.LoadScenario(o.scenarioFile)
		if err != nil {
			return err
		}
		o.scenario = sc
	}

	flags := cmd.Flags()
	if !flags.Changed("trials") {
		o.trials = cfg.Simulation.Trials
	}
	if !flags.Changed("seed") {
		o.seed = cfg.Simulation.Seed
	}
	if !flags.Changed("workers") {
		o.workers = cfg.Simulation.Workers
	}
	if !flags.Changed("max-rounds") {
		o.maxRounds = cfg.Simulation.MaxRounds
	}

	logger, err := logging.NewLogger(&logging.Config{Level: o.logLevel, Format: "text", Output: "stderr"})
	if err != nil {
		return err
	}
	o.logger = logger.WithField("cmd", cmd.Name())
	return nil
}

func (o *options) harness() (*montecarlo.Harness, error) {
	return montecarlo.NewHarness(montecarlo.Config{
		Regions:   o.scenario.Specs(),
		Workers:   o.workers,
		Seed:      o.seed,
		MaxRounds: o.maxRounds,
	}, montecarlo.WithLogger(logging.NewZapLogger(o.logger)))
}

func newSimulateCmd(opts *options) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo batch for one strategy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := search.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			return opts.run(cmd, st)
		},
	}
	cmd.Flags().StringVarP(&strategy, "strategy", "s", search.Concentrate.String(), "strategy to simulate (concentrate or split)")
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var names []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the same batch for several strategies side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategies := make([]search.Strategy, 0, len(names))
			for _, name := range names {
				st, err := search.ParseStrategy(name)
				if err != nil {
					return err
				}
				strategies = append(strategies, st)
			}
			return opts.run(cmd, strategies...)
		},
	}
	cmd.Flags().StringSliceVar(&names, "strategies", nil, "strategies to compare (default: all)")
	return cmd
}

func newPlansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List the scenario regions and the fixed search plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := opts.scenario.Specs()
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"scenario": opts.scenario.Name,
					"regions":  specs,
					"plans":    search.Plans(len(specs)),
				})
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), renderPlans(opts.scenario.Name, specs))
			return err
		},
	}
}

// run executes a batch for strategies (all of them when none are given) and
// prints the report.
func (o *options) run(cmd *cobra.Command, strategies ...search.Strategy) error {
	if o.trials < 0 {
		return fmt.Errorf("%w: %d", montecarlo.ErrInvalidTrials, o.trials)
	}
	h, err := o.harness()
	if err != nil {
		return err
	}

	results, err := h.Compare(cmd.Context(), o.trials, strategies...)
	if err != nil {
		return err
	}

	rep := report{
		Scenario: o.scenario.Name,
		Seed:     h.Seed(),
		Trials:   o.trials,
		Results:  results,
	}
	if o.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), rep)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), renderReport(rep, o.histogram))
	return err
}

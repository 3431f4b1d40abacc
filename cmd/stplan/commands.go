package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pdrpinto/stastar"
	"github.com/pdrpinto/stastar/internal/config"
	"github.com/pdrpinto/stastar/internal/logging"
	"github.com/pdrpinto/stastar/internal/render"
	"github.com/pdrpinto/stastar/internal/scenario"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// errNoPath is returned by --fail-if-empty runs that find no trajectory.
var errNoPath = errors.New("no feasible trajectory")

type options struct {
	configPath string
	logLevel   string

	scenarioPath   string
	plotPath       string
	trajectoryPath string
	jsonOutput     bool
	failIfEmpty    bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "stplan",
		Short:         "Plan trajectories through a space-time corridor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "settings file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log_level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&opts.failIfEmpty, "fail-if-empty", false, "exit non-zero when no trajectory is found")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan one scenario",
		Long: `Plan a single scenario and print the trajectory.

An empty trajectory is a normal outcome: the goal could not be reached within
the configured bounds and iteration limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}
	planCmd.Flags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "scenario file (YAML)")
	planCmd.Flags().StringVar(&opts.plotPath, "plot", "", "write the space-time chart to this file")
	planCmd.Flags().StringVar(&opts.trajectoryPath, "trajectory", "", "write the s-l trajectory chart to this file")
	_ = planCmd.MarkFlagRequired("scenario")

	batchCmd := &cobra.Command{
		Use:   "batch SCENARIO...",
		Short: "Plan several scenarios concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts, args)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stplan %s\n", version)
		},
	}

	rootCmd.AddCommand(planCmd, batchCmd, versionCmd)
	return rootCmd
}

// session is the state shared by plan and batch runs.
type session struct {
	runID   string
	logger  zerolog.Logger
	planner *stastar.Planner
	close   func() error
}

func openSession(cmd *cobra.Command, opts *options) (*session, error) {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		settings.LogLevel = opts.logLevel
	}

	logger, closer, err := logging.Setup(cmd.ErrOrStderr(), settings.LogLevel, settings.LogFile)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	plannerOptions := []stastar.Option{stastar.WithLogger(logger)}
	if settings.Workers > 0 {
		plannerOptions = append(plannerOptions, stastar.WithWorkers(settings.Workers))
	}
	planner, err := stastar.New(settings.Planner(), plannerOptions...)
	if err != nil {
		closer.Close()
		return nil, err
	}

	cfg := planner.Config()
	logger.Debug().
		Float64("dt", cfg.DT).Float64("ds", cfg.DS).
		Float64("min_speed", cfg.MinSpeed).Float64("max_speed", cfg.MaxSpeed).
		Float64("max_accel", cfg.MaxAccel).Float64("max_steer", cfg.MaxSteer).
		Int("iter_max", cfg.IterMax).
		Msg("planner configured")

	return &session{runID: runID, logger: logger, planner: planner, close: closer.Close}, nil
}

func runPlan(cmd *cobra.Command, opts *options) error {
	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.close()

	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return err
	}
	cfg := sess.planner.Config()
	request, err := sc.Request(cfg)
	if err != nil {
		return fmt.Errorf("scenario %s: %w", opts.scenarioPath, err)
	}

	result := sess.planner.Search(request.Start, request.Goal, request.Mask)
	sess.logger.Info().
		Str("scenario", sc.Name).
		Str("termination", result.Termination.String()).
		Int("expansions", result.Expansions).
		Int("states", len(result.Path)).
		Msg("plan finished")

	if opts.plotPath != "" {
		if err := render.STPlot(request.Mask, cfg, result.Path, opts.plotPath); err != nil {
			return err
		}
	}
	if opts.trajectoryPath != "" && result.Found {
		if err := render.SLPlot(result.Path, request.Goal, opts.trajectoryPath); err != nil {
			return err
		}
	}

	report := newReport(sess.runID, scenarioName(sc, opts.scenarioPath), result)
	if err := writeReports(cmd.OutOrStdout(), opts.jsonOutput, false, report); err != nil {
		return err
	}
	if opts.failIfEmpty && !result.Found {
		return errNoPath
	}
	return nil
}

func runBatch(cmd *cobra.Command, opts *options, paths []string) error {
	sess, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.close()

	cfg := sess.planner.Config()
	names := make([]string, len(paths))
	requests := make([]stastar.Request, len(paths))
	for i, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		if requests[i], err = sc.Request(cfg); err != nil {
			return fmt.Errorf("scenario %s: %w", path, err)
		}
		names[i] = scenarioName(sc, path)
	}

	results, err := stastar.PlanBatch(cmd.Context(), sess.planner, requests)
	if err != nil {
		return err
	}

	reports := make([]report, len(results))
	missing := 0
	for i, result := range results {
		reports[i] = newReport(sess.runID, names[i], result)
		if !result.Found {
			missing++
		}
	}
	sess.logger.Info().Int("scenarios", len(paths)).Int("unsolved", missing).Msg("batch finished")

	if err := writeReports(cmd.OutOrStdout(), opts.jsonOutput, true, reports...); err != nil {
		return err
	}
	if opts.failIfEmpty && missing > 0 {
		return fmt.Errorf("%w: %d of %d scenarios", errNoPath, missing, len(paths))
	}
	return nil
}

func scenarioName(sc *scenario.Scenario, path string) string {
	if sc.Name != "" {
		return sc.Name
	}
	return path
}

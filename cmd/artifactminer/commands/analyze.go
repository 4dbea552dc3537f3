package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/analysis"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/config"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/observability"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/report"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/store"
	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/summarizer"
)

// AnalyzeCommand holds the flags and dependencies of the analyze command.
type AnalyzeCommand struct {
	userEmail string
	plotFile  string
	noStore   bool
	noCache   bool
	summarize bool
	jsonOut   bool
	verbose   bool

	initObservability observabilityInit
	runnerOpts        []analysis.Option
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	return newAnalyzeCommandWithDeps(observability.Init)
}

func newAnalyzeCommandWithDeps(initObs observabilityInit, runnerOpts ...analysis.Option) *cobra.Command {
	ac := &AnalyzeCommand{initObservability: initObs, runnerOpts: runnerOpts}

	cmd := &cobra.Command{
		Use:   "analyze PATH",
		Short: "Analyse a directory, file or zip archive",
		Args:  cobra.ExactArgs(1),
		RunE:  ac.run,
	}

	addConfigFlag(cmd)
	cmd.Flags().StringVar(&ac.userEmail, "user-email", "", "Email whose commits are attributed to the user (overrides identity.user_email)")
	cmd.Flags().StringVar(&ac.plotFile, "plot", "", "Write an HTML timeline chart to this file")
	cmd.Flags().BoolVar(&ac.noStore, "no-store", false, "Do not persist the analysis")
	cmd.Flags().BoolVar(&ac.noCache, "no-cache", false, "Bypass the bag-of-words cache")
	cmd.Flags().BoolVar(&ac.summarize, "summarize", false, "Request a prose summary (overrides summarizer.enabled)")
	cmd.Flags().BoolVar(&ac.jsonOut, "json", false, "Print the analysis as JSON")
	cmd.Flags().BoolVarP(&ac.verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func (ac *AnalyzeCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if ac.userEmail != "" {
		cfg.Identity.UserEmail = ac.userEmail
	}

	oc := observabilityConfig(cfg, ac.verbose)
	oc.LogOutput = cmd.ErrOrStderr()

	providers, err := ac.initObservability(oc)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	defer func() {
		if providers.Shutdown == nil {
			return
		}

		shutdownErr := providers.Shutdown(context.WithoutCancel(ctx))
		if shutdownErr != nil && providers.Logger != nil {
			providers.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	opts, closeStore, err := ac.buildOptions(ctx, cfg, providers)
	if err != nil {
		return err
	}
	defer closeStore()

	runner, err := analysis.New(cfg, opts...)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, args[0])
	if err != nil {
		return err
	}

	err = ac.write(cmd.OutOrStdout(), res)
	if err != nil {
		return err
	}

	if ac.plotFile != "" {
		return writePlot(ac.plotFile, res)
	}

	return nil
}

func (ac *AnalyzeCommand) buildOptions(
	ctx context.Context, cfg *config.Config, providers observability.Providers,
) ([]analysis.Option, func(), error) {
	logger := providers.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var metrics *observability.PipelineMetrics

	if providers.Meter != nil {
		pm, err := observability.NewPipelineMetrics(providers.Meter)
		if err != nil {
			return nil, nil, fmt.Errorf("create metrics: %w", err)
		}

		metrics = pm
	}

	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMetrics(metrics),
		analysis.WithTracer(providers.Tracer),
	}

	if ac.noCache || !cfg.Cache.Enabled {
		opts = append(opts, analysis.WithoutCache())
	}

	if ac.summarize || cfg.Summarizer.Enabled {
		client, err := summarizer.New(cfg.Summarizer,
			summarizer.WithLogger(logger), summarizer.WithMetrics(metrics))
		if err != nil {
			logger.Warn("summary disabled", "error", err)
		} else {
			opts = append(opts, analysis.WithSummarizer(client, ""))
		}
	}

	closeStore := func() {}

	if !ac.noStore && cfg.Store.Enabled {
		db, err := store.OpenSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}

		migrateErr := db.Migrate(ctx)
		if migrateErr != nil {
			db.Close()

			return nil, nil, migrateErr
		}

		opts = append(opts, analysis.WithStore(db))
		closeStore = func() { db.Close() }
	}

	return append(opts, ac.runnerOpts...), closeStore, nil
}

func (ac *AnalyzeCommand) write(w io.Writer, res *analysis.Result) error {
	if !ac.jsonOut {
		report.Text(w, res)

		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(res.AnalysisResult)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

func writePlot(path string, res *analysis.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	renderErr := report.Timeline(f, res.ProjectAnalysis.Timeline)
	closeErr := f.Close()

	return errors.Join(renderErr, closeErr)
}

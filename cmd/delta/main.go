// Command delta runs the generator and processor halves of the
// streaming fusion-diagnostics pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kstarfusion/delta/internal/analysis"
	"github.com/kstarfusion/delta/internal/config"
	"github.com/kstarfusion/delta/internal/deltaerr"
	"github.com/kstarfusion/delta/internal/generator"
	"github.com/kstarfusion/delta/internal/logging"
	"github.com/kstarfusion/delta/internal/pipeline"
	"github.com/kstarfusion/delta/internal/reporter"
	"github.com/kstarfusion/delta/internal/runcontext"
	"github.com/kstarfusion/delta/internal/transport"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if ce, ok := err.(*deltaerr.CoreError); ok {
		return ce.ExitCode()
	}
	return 1
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "delta",
		Short: "Streaming fusion-diagnostics analysis pipeline",
	}
	root.AddCommand(generatorCmd())
	root.AddCommand(processorCmd())
	root.AddCommand(demoCmd())
	return root
}

func generatorCmd() *cobra.Command {
	var configPath string
	var noPace bool

	cmd := &cobra.Command{
		Use:   "generator",
		Short: "Replay an archived diagnostic file over the configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rc, err := loadRunContext(configPath)
			if err != nil {
				return err
			}

			prod, err := producerForEngine(cfg.Transport.Engine)
			if err != nil {
				return err
			}

			return runGenerator(cfg, rc, prod, !noPace)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the run's configuration file")
	cmd.Flags().BoolVar(&noPace, "no-pace", false, "emit every chunk immediately instead of at wall-clock pace")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func processorCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "processor",
		Short: "Consume the configured transport and dispatch analysis tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rc, err := loadRunContext(configPath)
			if err != nil {
				return err
			}

			cons, err := consumerForEngine(cfg.Transport.Engine)
			if err != nil {
				return err
			}

			return runProcessor(cfg, rc, cons)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the run's configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

// demoCmd runs a generator and processor against the in-memory
// transport in one process, for exercising the whole pipeline without
// a real wire-transport driver.
func demoCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run generator and processor together over an in-memory transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, rc, err := loadRunContext(configPath)
			if err != nil {
				return err
			}

			prod, cons := transport.NewMemoryPair(4)

			genErrCh := make(chan error, 1)
			go func() { genErrCh <- runGenerator(cfg, rc, prod, false) }()

			if err := runProcessor(cfg, rc, cons); err != nil {
				return err
			}
			return <-genErrCh
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the run's configuration file")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func loadRunContext(configPath string) (*config.Config, *runcontext.RunContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := logging.New(logging.DefaultConfig())
	rc, err := runcontext.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rc, nil
}

// producerForEngine resolves cfg.transport.engine to a transport.Producer.
// Only the in-memory reference transport ships in this build; the real
// wire-engine drivers (bp4, dataman, sst) are external collaborators
// this repository does not implement (see DESIGN.md).
func producerForEngine(engine string) (transport.Producer, error) {
	return nil, deltaerr.NewConfigError(fmt.Sprintf(
		"transport.engine %q has no standalone driver in this build; use `delta demo` to run generator and processor together over the in-memory transport", engine))
}

func consumerForEngine(engine string) (transport.Consumer, error) {
	return nil, deltaerr.NewConfigError(fmt.Sprintf(
		"transport.engine %q has no standalone driver in this build; use `delta demo` to run generator and processor together over the in-memory transport", engine))
}

func runGenerator(cfg *config.Config, rc *runcontext.RunContext, prod transport.Producer, paced bool) error {
	channels := generator.ChannelCount(cfg.Diagnostic.DataSource.ChannelRange)

	reader, err := generator.OpenReader(
		cfg.Diagnostic.DataSource.SourceFile,
		channels,
		cfg.Diagnostic.DataSource.ChunkSize,
		cfg.Diagnostic.DataSource.NumChunks,
	)
	if err != nil {
		return deltaerr.NewConfigError(err.Error())
	}
	defer reader.Close()

	g := &generator.Generator{
		Reader:       reader,
		Producer:     prod,
		VariableName: generator.VariableNameFromConfig(cfg),
		Channels:     channels,
		ChunkSize:    cfg.Diagnostic.DataSource.ChunkSize,
		FSample:      cfg.Diagnostic.Parameters.FSampleHz(),
		Paced:        paced,
		Reporter:     reporter.NewTerminalReporter(),
	}
	return g.Run(cfg)
}

func runProcessor(cfg *config.Config, rc *runcontext.RunContext, cons transport.Consumer) error {
	tasks, err := pipeline.BuildTasks(cfg)
	if err != nil {
		return err
	}

	seq := analysis.BuildDispatchSequence(tasks)
	if _, err := rc.Storage.StoreMetadata(cfg, rc.RunID, seq); err != nil {
		return err
	}

	rep := reporter.NewCompositeReporter(reporter.NewTerminalReporter())
	pl := pipeline.New(rc, cons, tasks, rep, pipeline.DefaultQueueCapacity, defaultWorkerCount())
	return pl.Run()
}

func defaultWorkerCount() int {
	return 4
}

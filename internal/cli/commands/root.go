package commands

import (
	"context"

	"coreader-client/internal/cli/ui"
	"coreader-client/internal/config"
	"coreader-client/internal/pkg/logger"
	"coreader-client/internal/tracer"

	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	// Global flags
	serverURL string
	protocol  string

	cfg            *config.Config
	log            *logger.ZapLogger
	printer        *ui.Printer
	shutdownTracer func(context.Context) error
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "coreader",
		Short: "Ask questions about your uploaded documents",
		Long: `coreader is a terminal client for a document question answering backend.

Upload text documents, choose which ones are active, and ask questions;
answers stream in as the backend produces them.

Run "coreader devserver" for a local backend to try it against.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "backend URL (overrides COREADER_SERVER_URL)")
	root.PersistentFlags().StringVar(&a.protocol, "protocol", "", "stream protocol: sentinel or tagged (overrides COREADER_STREAM_PROTOCOL)")

	root.AddCommand(
		newChatCmd(a),
		newFilesCmd(a),
		newDevServerCmd(a),
		newLogsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// 1. Configuration, flags win over the environment
	a.cfg = config.Load()
	if a.serverURL != "" {
		a.cfg.Client.ServerURL = a.serverURL
	}
	if a.protocol != "" {
		a.cfg.Client.StreamProtocol = a.protocol
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	// 2. Logger: the dev backend also logs to the console, the client
	// keeps the terminal for the conversation.
	if cmd.Name() == "devserver" {
		a.log = logger.NewZapLogger(a.cfg.App.LogFilePath, a.cfg.IsProduction())
	} else {
		a.log = logger.NewIsolatedLogger(a.cfg.App.LogFilePath)
	}

	// 3. Tracing and output
	a.shutdownTracer = tracer.InitTracer(a.cfg.Telemetry, a.log)
	a.printer = ui.NewPrinter(cmd.OutOrStdout())
	return nil
}

func (a *app) teardown(ctx context.Context) {
	if a.shutdownTracer != nil {
		_ = a.shutdownTracer(context.WithoutCancel(commandContext(ctx)))
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

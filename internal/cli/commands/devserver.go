package commands

import (
	"coreader-client/internal/bootstrap"
	"coreader-client/internal/server"

	"github.com/spf13/cobra"
)

func newDevServerCmd(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run a local backend that answers from uploaded text files",
		Long: `Runs an in-memory implementation of the backend API on DEVSERVER_PORT.

Answers are keyword matches against active documents, streamed word by word.
Connect with ?protocol=tagged on /ws/stream for JSON frames with citations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd.Context())
			if port != "" {
				a.cfg.DevServer.Port = port
			}

			srv := server.New(a.cfg, bootstrap.NewDevServerContainer(a.cfg, a.log), a.log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Run()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.log.Info("Server", "Shutting down dev backend", nil)
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides DEVSERVER_PORT)")
	return cmd
}

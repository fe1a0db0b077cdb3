package commands

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"coreader-client/internal/bootstrap"
	"coreader-client/internal/entity"

	"github.com/spf13/cobra"
)

const notificationWait = 2 * time.Second

func newFilesCmd(a *app) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Manage uploaded files",
	}

	filesCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List uploaded files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withFiles(cmd, func(ctx context.Context, c *bootstrap.Container) error {
					a.printer.Files(c.Files.Files())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "upload [path]",
			Short: "Upload a text file; a file with the same name is replaced",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				content, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				return a.withFiles(cmd, func(ctx context.Context, c *bootstrap.Container) error {
					_, err := c.Files.Upload(ctx, filepath.Base(args[0]), content)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "toggle [id]",
			Short: "Activate or deactivate a file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withFiles(cmd, func(ctx context.Context, c *bootstrap.Container) error {
					_, err := c.Files.ToggleActive(ctx, args[0])
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "Delete a file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withFiles(cmd, func(ctx context.Context, c *bootstrap.Container) error {
					return c.Files.Delete(ctx, args[0])
				})
			},
		},
	)
	return filesCmd
}

// withFiles loads the registry, runs op and prints the one notification each
// registry mutation emits.
func (a *app) withFiles(cmd *cobra.Command, op func(ctx context.Context, c *bootstrap.Container) error) error {
	ctx := commandContext(cmd.Context())

	container, err := bootstrap.NewContainer(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer container.Close()

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	notifications, err := container.Bus.Subscribe(subCtx)
	if err != nil {
		return err
	}

	if err := container.Files.LoadAll(ctx); err != nil {
		a.awaitNotification(notifications)
		return err
	}

	opErr := op(ctx, container)
	if cmd.Name() != "list" {
		a.awaitNotification(notifications)
	}
	return opErr
}

func (a *app) awaitNotification(ch <-chan entity.Notification) {
	select {
	case n, ok := <-ch:
		if ok {
			a.printer.Notify(n)
		}
	case <-time.After(notificationWait):
	}
}

package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"coreader-client/internal/bootstrap"
	"coreader-client/internal/service"

	"github.com/spf13/cobra"
)

const chatHelp = `Type a question, or one of:
  /upload <path>   upload a text file
  /files           list uploaded files
  /toggle <id>     activate or deactivate a file
  /delete <id>     delete a file
  /reload          reload the file list from the server
  /new             start a new chat
  /quit            exit`

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question answering session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(commandContext(cmd.Context()), cmd.InOrStdin())
		},
	}
}

// parseCommand splits "/name arg" input. ok is false for plain queries.
func parseCommand(line string) (name, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	fields := strings.SplitN(strings.TrimPrefix(line, "/"), " ", 2)
	name = strings.ToLower(fields[0])
	if len(fields) == 2 {
		arg = strings.TrimSpace(fields[1])
	}
	return name, arg, true
}

func (a *app) runChat(ctx context.Context, in io.Reader) error {
	container, err := bootstrap.NewContainer(a.cfg, a.log, service.WithChangeHook(a.printer.Message))
	if err != nil {
		return err
	}

	// 1. Notifications print as they arrive
	notifications, err := container.Bus.Subscribe(ctx)
	if err != nil {
		_ = container.Close()
		return err
	}
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for n := range notifications {
			a.printer.Notify(n)
		}
	}()
	defer func() {
		_ = container.Close()
		<-printed
	}()

	// 2. Sync files; failure is reported and the chat still starts
	_ = container.Files.LoadAll(ctx)
	a.printer.Line("Connected to %s", container.Client.BaseURL())
	a.printer.Line(chatHelp)

	// 3. Read lines until /quit, EOF or interrupt
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		a.printer.Prompt()
		var (
			line string
			ok   bool
		)
		select {
		case line, ok = <-lines:
		case <-ctx.Done():
			return nil
		}
		if !ok {
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := a.handleLine(ctx, container, line); quit {
			return nil
		}
	}
}

// handleLine runs one input line and reports whether the chat should end.
// Service failures are already announced through notifications.
func (a *app) handleLine(ctx context.Context, c *bootstrap.Container, line string) bool {
	name, arg, isCommand := parseCommand(line)
	if !isCommand {
		a.ask(ctx, c, line)
		return false
	}

	switch name {
	case "quit", "exit":
		return true
	case "help":
		a.printer.Line(chatHelp)
	case "files":
		a.printer.Files(c.Files.Files())
	case "reload":
		if err := c.Files.LoadAll(ctx); err == nil {
			a.printer.Files(c.Files.Files())
		}
	case "upload":
		if arg == "" {
			a.printer.Line("usage: /upload <path>")
			break
		}
		content, err := os.ReadFile(arg)
		if err != nil {
			a.printer.Error(err)
			break
		}
		_, _ = c.Files.Upload(ctx, filepath.Base(arg), content)
	case "toggle":
		if arg == "" {
			a.printer.Line("usage: /toggle <id>")
			break
		}
		_, _ = c.Files.ToggleActive(ctx, arg)
	case "delete":
		if arg == "" {
			a.printer.Line("usage: /delete <id>")
			break
		}
		_ = c.Files.Delete(ctx, arg)
	case "new":
		if err := c.Session.NewChat(ctx); err != nil {
			a.printer.Error(err)
		}
	default:
		a.printer.Line("unknown command /%s (try /help)", name)
	}
	return false
}

func (a *app) ask(ctx context.Context, c *bootstrap.Container, query string) {
	c.Session.SetDraft(query)
	sub, err := c.Session.Submit(ctx, query)
	if err != nil {
		a.printer.Error(fmt.Errorf("cannot ask now: %w", err))
		return
	}
	if sub == nil {
		return
	}
	if err := sub.Wait(ctx); err != nil {
		return
	}
	a.printer.EndAnswer()
}

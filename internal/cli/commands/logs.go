package commands

import (
	"encoding/json"

	"coreader-client/internal/pkg/logger"

	"github.com/spf13/cobra"
)

func newLogsCmd(a *app) *cobra.Command {
	var q logger.LogQuery

	cmd := &cobra.Command{
		Use:   "logs [id]",
		Short: "Show recent log entries, or one entry with its details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				entry, err := a.log.GetLogById(args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(entry, "", "  ")
				if err != nil {
					return err
				}
				a.printer.Line("%s", out)
				return nil
			}

			entries, err := a.log.GetLogs(q)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.printer.Line("No log entries.")
				return nil
			}
			a.printer.LogEntries(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Level, "level", "", "only entries at this level (debug, info, warn, error)")
	cmd.Flags().StringVar(&q.Module, "module", "", "only entries from this module")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "maximum entries to show")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "entries to skip")
	return cmd
}

package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Match, enrich and publish a scanned batch",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		in, _ := cmd.Flags().GetString("in")
		export, _ := cmd.Flags().GetString("export")

		batch, err := readBatchFile(in)
		if err != nil {
			return err
		}

		env, err := initProcess(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Pipeline.Run(ctx, *batch)
		if report != nil && export != "" {
			if exportErr := exportLeadsFile(export, report.Leads); exportErr != nil {
				zap.L().Warn("process: export failed", zap.String("path", export), zap.Error(exportErr))
			}
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"run_id":   report.RunID,
			"counters": report.Counters,
			"leads":    len(report.Leads),
			"elapsed":  pipeline.FormatElapsed(report.Elapsed),
		})
	},
}

func init() {
	processCmd.Flags().String("in", "batch.json", "batch written by scan, - for stdin")
	processCmd.Flags().String("export", "", "write enriched leads to this .xlsx or .csv file")
	rootCmd.AddCommand(processCmd)
}

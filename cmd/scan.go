package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/estate-leads/internal/deathindex"
	"github.com/sells-group/estate-leads/internal/model"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the death index and write the hand-off batch",
	Long: "Searches the register of deeds death index for a date-of-death window (default: the single day three months ago), " +
		"writes the batch as JSON and optionally submits it to a running serve instance.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("scan"); err != nil {
			return err
		}
		ctx := cmd.Context()

		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		out, _ := cmd.Flags().GetString("out")
		submit, _ := cmd.Flags().GetString("submit")
		if submit == "" {
			submit = cfg.Scan.SubmitURL
		}

		w, err := deathindex.ParseWindow(from, to, time.Now())
		if err != nil {
			return eris.Wrap(err, "scan: window")
		}

		batch, err := initScanner().Scan(ctx, w)
		if err != nil {
			return err
		}

		if err := writeBatchFile(out, batch); err != nil {
			return err
		}
		zap.L().Info("scan: batch written",
			zap.String("out", out),
			zap.Int("pages", len(batch.DeadPeopleList)),
			zap.Int("names_extracted", batch.NumberOfNamesExtracted),
		)

		if submit == "" {
			return nil
		}
		runID, err := submitBatch(ctx, http.DefaultClient, submit, batch)
		if err != nil {
			return err
		}
		zap.L().Info("scan: batch submitted", zap.String("run_id", runID), zap.String("url", submit))
		return nil
	},
}

func init() {
	scanCmd.Flags().String("from", "", "first date of death, mm/dd/yyyy (default: three months ago)")
	scanCmd.Flags().String("to", "", "last date of death, mm/dd/yyyy (default: three months ago)")
	scanCmd.Flags().String("out", "batch.json", "batch output path, - for stdout")
	scanCmd.Flags().String("submit", "", "serve base URL to submit the batch to (default from config)")
	rootCmd.AddCommand(scanCmd)
}

// writeBatchFile writes the batch as indented JSON. "-" writes to stdout.
func writeBatchFile(path string, batch *model.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode batch")
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write batch %s", path)
	}
	return nil
}

// readBatch decodes a batch from r.
func readBatch(r io.Reader) (*model.Batch, error) {
	var batch model.Batch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, eris.Wrap(err, "decode batch")
	}
	return &batch, nil
}

// readBatchFile reads a batch written by scan. "-" reads stdin.
func readBatchFile(path string) (*model.Batch, error) {
	if path == "-" {
		return readBatch(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch %s", path)
	}
	defer f.Close() //nolint:errcheck
	return readBatch(f)
}

// submitBatch posts the batch to a serve instance and returns the queued
// run id.
func submitBatch(ctx context.Context, hc *http.Client, baseURL string, batch *model.Batch) (string, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return "", eris.Wrap(err, "encode batch")
	}

	url := strings.TrimRight(baseURL, "/") + "/v1/batches"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "submit: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "submit: send")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", eris.Errorf("submit: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out acceptedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", eris.Wrap(err, "submit: decode response")
	}
	return out.RunID, nil
}

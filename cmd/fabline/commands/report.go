package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"fabline/internal/report"
	"fabline/internal/track"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	reportProject string
	reportFrom    string
	reportTo      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate performance and forecast reports",
}

var reportWorkersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Report per-worker performance summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		start, end, err := parseRange()
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		engine := report.NewEngine(s)
		summaries, err := engine.WorkerReport(context.Background(), reportProject, start, end)
		if err != nil {
			return err
		}

		log.Info().Int("workers", len(summaries)).Msg("Worker report generated")
		return writeJSON(summaries)
	},
}

var reportProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Report per-project completion forecasts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		engine := report.NewEngine(s)
		summaries, err := engine.ProjectReport(context.Background(), reportProject)
		if err != nil {
			return err
		}

		log.Info().Int("projects", len(summaries)).Msg("Project report generated")
		return writeJSON(summaries)
	},
}

// parseRange converts the --from/--to flags into time bounds. Empty flags
// leave the corresponding bound open.
func parseRange() (time.Time, time.Time, error) {
	var start, end time.Time
	if reportFrom != "" {
		t, err := track.ParseTime(reportFrom)
		if err != nil {
			return start, end, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if reportTo != "" {
		t, err := track.ParseTime(reportTo)
		if err != nil {
			return start, end, fmt.Errorf("invalid --to: %w", err)
		}
		end = t
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("--to %s is before --from %s", reportTo, reportFrom)
	}
	return start, end, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	reportCmd.PersistentFlags().StringVar(&reportProject, "project", "", "restrict the report to a single project ID")
	reportWorkersCmd.Flags().StringVar(&reportFrom, "from", "", "start of the reporting range (e.g. 2024-03-01)")
	reportWorkersCmd.Flags().StringVar(&reportTo, "to", "", "end of the reporting range (e.g. 2024-03-31)")

	reportCmd.AddCommand(reportWorkersCmd)
	reportCmd.AddCommand(reportProjectsCmd)
	rootCmd.AddCommand(reportCmd)
}

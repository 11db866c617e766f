package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/risknet/pkg/types/risk"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show service statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			stats, err := cliCtx.Client.Statistics(ctx)
			if err != nil {
				return err
			}
			return printResult(cmd, cliCtx, stats, func() string { return renderStats(stats) })
		},
	}
}

func renderStats(stats *risk.StatisticsResponse) string {
	var sb strings.Builder
	s := stats.Service

	fmt.Fprintf(&sb, "Requests:        %d (%d failed)\n", s.TotalRequests, s.FailedRequests)
	fmt.Fprintf(&sb, "Cache hits:      %d (%.0f%%)\n", s.CacheHits, s.CacheHitRatio*100)
	fmt.Fprintf(&sb, "Fast mode:       %v\n", s.FastMode)
	fmt.Fprintf(&sb, "Started at:      %s\n", s.StartedAt.Format("2006-01-02 15:04:05 MST"))

	if len(s.ByLevel) > 0 {
		sb.WriteString("\nAssessments by level:\n")
		for _, level := range []string{"very_low", "low", "medium", "high", "very_high"} {
			if n, ok := s.ByLevel[level]; ok {
				fmt.Fprintf(&sb, "  %-10s %d\n", level, n)
			}
		}
	}
	if len(s.DegradedCounts) > 0 {
		sb.WriteString("\nDegraded sources:\n")
		for source, n := range s.DegradedCounts {
			fmt.Fprintf(&sb, "  %-16s %d\n", source, n)
		}
	}
	if len(stats.Graph) > 0 {
		sb.WriteString("\nRelationship graph:\n")
		for k, v := range stats.Graph {
			fmt.Fprintf(&sb, "  %-16s %d\n", k, v)
		}
	}
	return sb.String()
}

func newRecentCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			records, err := cliCtx.Client.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printResult(cmd, cliCtx, records, func() string { return renderRecent(records) })
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows")
	return cmd
}

func renderRecent(records []risk.HistoryRecord) string {
	if len(records) == 0 {
		return "No assessments recorded.\n"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.PrimaryName,
			string(r.InputType),
			strconv.Itoa(r.RiskScore),
			r.RiskLevel,
		})
	}
	return formatTable([]string{"CREATED", "SUBJECT", "TYPE", "SCORE", "LEVEL"}, rows)
}

func newFastModeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "fast-mode <on|off>",
		Short:     "Toggle parallel source collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}

			var enable bool
			switch args[0] {
			case "on":
				enable = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()

			on, err := cliCtx.Client.SetFastMode(ctx, enable)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fast mode: %v\n", on)
			return nil
		},
	}
}

// Package cli implements the riskctl command tree. Most commands talk to a
// running API server through the SDK; the media commands manage the local
// adverse-media index directly.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/risknet/internal/config"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/pkg/client"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath   string
	ServerAddr   string
	OutputFormat string
	Timeout      time.Duration
	Verbose      bool
}

// CLIContext carries the initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Client       *client.Client
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand builds the riskctl root with its global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "riskctl",
		Short: "RiskNet CLI — entity risk assessment from the command line",
		Long: "riskctl screens persons and companies against sanctions lists, web\n" +
			"intelligence, and the relationship graph through a running RiskNet\n" +
			"API server, and manages the local adverse-media index.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initContext(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./risknet.yaml)")
	pf.StringVar(&opts.ServerAddr, "server", "", "API server address (default: http://localhost:8080)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json)")
	pf.DurationVar(&opts.Timeout, "timeout", 60*time.Second, "operation timeout")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newAssessCommand(),
		newStatsCommand(),
		newRecentCommand(),
		newFastModeCommand(),
		newMediaCommand(),
	)

	return cmd
}

// initContext loads config, builds the logger and SDK client, and stores
// the CLIContext on the command.
func initContext(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       level,
		Format:      "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	addr := opts.ServerAddr
	if addr == "" {
		addr = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	apiClient, err := client.NewClient(addr, client.WithTimeout(opts.Timeout))
	if err != nil {
		return fmt.Errorf("init API client: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Client:       apiClient,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// loadConfig resolves the config file: explicit path, then the usual
// search locations, then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	candidates := []string{"./risknet.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".risknet", "config.yaml"))
	}
	candidates = append(candidates, "/etc/risknet/config.yaml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// cliContext extracts the CLIContext installed by the root pre-run.
func cliContext(cmd *cobra.Command) (*CLIContext, error) {
	if cmd.Context() == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	ctx, ok := cmd.Context().Value(cliContextKey{}).(*CLIContext)
	if !ok || ctx == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	return ctx, nil
}

// printResult renders data as JSON or hands off to the command's text
// renderer.
func printResult(cmd *cobra.Command, cliCtx *CLIContext, data interface{}, text func() string) error {
	if cliCtx.OutputFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	fmt.Fprint(cmd.OutOrStdout(), text())
	return nil
}

// formatTable renders an aligned two-space-separated table.
func formatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if len(row[i]) > widths[i] {
				widths[i] = len(row[i])
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, w := range widths {
			if i > 0 {
				sb.WriteString("  ")
			}
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(cell)
			if pad := w - len(cell); pad > 0 && i < len(widths)-1 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	seps := make([]string, len(headers))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	writeRow(seps)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}

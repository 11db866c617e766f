package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/risknet/internal/config"
	"github.com/turtacn/risknet/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/risknet/internal/infrastructure/websearch/adversemedia"
	"github.com/turtacn/risknet/pkg/errors"
)

// newMediaCommand manages the adverse-media OpenSearch indexes directly.
// These operations are operational bootstrap, so they talk to the cluster
// from local config instead of going through the API server.
func newMediaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage the adverse-media article index",
	}
	cmd.AddCommand(newMediaInitCommand(), newMediaSeedCommand())
	return cmd
}

func mediaConfig(cfg *config.Config) (adversemedia.Config, error) {
	if !cfg.OpenSearch.Enabled || len(cfg.OpenSearch.Addresses) == 0 {
		return adversemedia.Config{}, errors.New(errors.ErrCodeValidation,
			"opensearch is not configured; set opensearch.enabled and opensearch.addresses")
	}
	return adversemedia.Config{
		Addresses:    cfg.OpenSearch.Addresses,
		Username:     cfg.OpenSearch.User,
		Password:     cfg.OpenSearch.Password,
		ArticleIndex: cfg.OpenSearch.Index,
		MaxResults:   cfg.OpenSearch.MaxHits,
	}, nil
}

func newMediaInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the article and assessment indexes if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}
			amCfg, err := mediaConfig(cliCtx.Config)
			if err != nil {
				return err
			}

			osClient, err := adversemedia.Connect(cmd.Context(), amCfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			indexer := adversemedia.NewIndexer(osClient, osClient.Indices, amCfg, cliCtx.Logger)
			if err := indexer.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
			return nil
		},
	}
}

func newMediaSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <articles.json>",
		Short: "Bulk-load articles from a JSON file",
		Long: `Seed reads a JSON array of articles and indexes each one.

Each article looks like:
  {"title": "...", "body": "...", "url": "...", "source": "...", "published_at": "2024-01-01T00:00:00Z"}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := cliContext(cmd)
			if err != nil {
				return err
			}
			amCfg, err := mediaConfig(cliCtx.Config)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, fmt.Sprintf("failed to read %s", args[0]))
			}
			var articles []adversemedia.Article
			if err := json.Unmarshal(raw, &articles); err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, fmt.Sprintf("%s is not a JSON array of articles", args[0]))
			}
			if len(articles) == 0 {
				return errors.New(errors.ErrCodeBadRequest, "no articles to index")
			}

			osClient, err := adversemedia.Connect(cmd.Context(), amCfg, cliCtx.Logger)
			if err != nil {
				return err
			}
			indexer := adversemedia.NewIndexer(osClient, osClient.Indices, amCfg, cliCtx.Logger)
			if err := indexer.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}

			var failed int
			for i, art := range articles {
				if art.Title == "" && art.Body == "" {
					cliCtx.Logger.Warn("skipping empty article")
					failed++
					continue
				}
				if err := indexer.IndexArticle(cmd.Context(), art); err != nil {
					cliCtx.Logger.Warn("failed to index article",
						logging.Int("position", i), logging.Err(err))
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d articles (%d failed)\n", len(articles)-failed, failed)
			if failed == len(articles) {
				return errors.New(errors.ErrCodeSourceUnavailable, "all articles failed to index")
			}
			return nil
		},
	}
}

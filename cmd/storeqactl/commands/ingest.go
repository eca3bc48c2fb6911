package commands

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	ingestSitemaps   []string
	ingestLimit      int
	ingestNoProgress bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Crawl the storefront sitemaps into the catalog",
	Long: "Walk the configured sitemaps, fetch each page, store its title and chunked text " +
		"with embeddings. Pages that fail or carry too little text are skipped.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(ingestSitemaps) > 0 {
			cfg.Ingest.Sitemaps = ingestSitemaps
		}
		if ingestLimit > 0 {
			cfg.Ingest.Limit = ingestLimit
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		bar := newIngestProgress(os.Stderr, !ingestNoProgress && !jsonOut)
		res, err := a.Ingest.Run(cmd.Context(), bar.Update)
		bar.Finish()
		if err != nil {
			return err
		}

		return printIngest(cmd.OutOrStdout(), res, jsonOut)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <url>",
	Short: "Ingest a single page into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Ingest.Seed(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("seed %s: %w", args[0], err)
		}
		return printIngest(cmd.OutOrStdout(), res, jsonOut)
	},
}

func init() {
	ingestCmd.Flags().StringSliceVar(&ingestSitemaps, "sitemap", nil, "sitemap url (repeatable, default from config)")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "maximum number of pages (default from config)")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "disable the progress bar")
	rootCmd.AddCommand(ingestCmd, seedCmd)
}

// ingestProgress renders crawl progress. The bar is created on the first update, once the
// url count is known.
type ingestProgress struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
}

func newIngestProgress(w io.Writer, enabled bool) *ingestProgress {
	return &ingestProgress{w: w, enabled: enabled}
}

// Update matches ingest.Progress.
func (p *ingestProgress) Update(done, total int) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.bar = progressbar.NewOptions(
			total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("ingesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("pages"),
			progressbar.OptionShowIts(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.w) }),
		)
	}
	_ = p.bar.Set(done)
}

// Finish completes the bar if one was shown.
func (p *ingestProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

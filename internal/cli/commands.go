package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"movierec/internal/domain"
	"movierec/internal/tui"
)

// sampleRows is how many dataset rows --sample prints.
const sampleRows = 10

type recommendOptions struct {
	top    string
	json   bool
	sample bool
}

func newRecommendCmd(root *rootOptions) *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Recommend movies similar to a title from the dataset",
		Long: `Recommend movies whose overview is most similar to the named movie.

The title must match a dataset title, ignoring case and surrounding spaces.

Examples:
  movierec recommend "The Dark Knight"
  movierec recommend -n 10 Avatar
  movierec recommend --json Inception | jq '.[].title'
  movierec recommend --sample`,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			if strings.TrimSpace(title) == "" && !opts.sample {
				return errors.New("please give a movie title")
			}
			a, err := bootstrap(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.sample {
				if err := writeSample(out, sess.Snapshot().Corpus.Docs(), sampleRows, a.cfg.Recommend.MaxDescriptionChars); err != nil {
					return err
				}
				if strings.TrimSpace(title) == "" {
					return nil
				}
				fmt.Fprintln(out)
			}

			n := a.topN(opts.top)
			recs, err := sess.Recommend(ctx, title, n)
			if err != nil {
				return err
			}
			return writeRecommendations(out, title, recs, opts.json, a.cfg.Recommend.MaxDescriptionChars)
		},
	}
	cmd.Flags().StringVarP(&opts.top, "top", "n", "", "Number of recommendations (1-10, default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output results as JSON")
	cmd.Flags().BoolVar(&opts.sample, "sample", false, "Print the first dataset rows")
	return cmd
}

type liveOptions struct {
	top  string
	json bool
}

func newLiveCmd(root *rootOptions) *cobra.Command {
	opts := &liveOptions{}
	cmd := &cobra.Command{
		Use:   "live <title>",
		Short: "Recommend from encyclopedia summaries fetched on demand",
		Long: `Look the title up on the configured MediaWiki site, fetch the summaries of
related pages and rank them against the title's own summary.

Examples:
  movierec live Inception
  movierec live -n 3 "Blade Runner"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			title := strings.Join(args, " ")
			recs, err := a.rec.RecommendLive(ctx, title, a.topN(opts.top))
			if err != nil {
				return err
			}
			return writeRecommendations(cmd.OutOrStdout(), title, recs, opts.json, a.cfg.Recommend.MaxDescriptionChars)
		},
	}
	cmd.Flags().StringVarP(&opts.top, "top", "n", "", "Number of recommendations (1-10, default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output results as JSON")
	return cmd
}

func newBuildCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Fit the TF-IDF model for the dataset and store it in the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			c, path, err := a.loadCorpus()
			if err != nil {
				return err
			}
			h, err := a.rec.Rebuild(ctx, c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Fitted %d documents from %s: %d terms, fingerprint %s\n",
				c.Len(), path, h.Terms(), h.Fingerprint())
			return nil
		},
	}
}

func newTUICmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive recommendation browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			m := tui.New(sess, tui.Options{
				TopN:                a.cfg.Recommend.DefaultTopN,
				MaxDescriptionChars: a.cfg.Recommend.MaxDescriptionChars,
				LiveAvailable:       a.rec.LiveEnabled(),
				Context:             ctx,
				Timeout:             time.Duration(a.cfg.Live.TimeoutSecs) * time.Second,
			})
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// describeError turns domain errors into the messages shown to users.
func describeError(err error) string {
	var nf *domain.NotFoundError
	var le *domain.LookupError
	switch {
	case errors.As(err, &nf):
		return nf.Error()
	case errors.As(err, &le):
		return "Live lookup failed: " + le.Error()
	case errors.Is(err, domain.ErrDataFormat):
		return "The dataset is not in the expected format: " + err.Error()
	case errors.Is(err, domain.ErrModelBuild):
		return "Could not build the model: " + err.Error()
	default:
		return err.Error()
	}
}

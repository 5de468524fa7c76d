package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/jirafocus/internal/app"
	"github.com/rshade/jirafocus/internal/jira"
)

// issueResult is one row of the issue command output.
type issueResult struct {
	Key   string      `json:"key"`
	Issue *jira.Issue `json:"issue,omitempty"`
	Error string      `json:"error,omitempty"`
}

// NewIssueCmd creates the issue command, which fetches issues through the cache.
func NewIssueCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "issue <key>...",
		Short: "Fetch issues by key",
		Long: `Fetches one or more issues concurrently through the issue cache. A key
repeated on the command line is fetched and printed once.`,
		Example: `  jirafocus issue PROJ-1
  jirafocus issue PROJ-1 PROJ-2 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, backend, err := loadApp(cmd, lookupEnv, app.WithoutPriming())
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			keys := uniqueKeys(args)
			results := make([]issueResult, len(keys))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.NumCPU())
			for i, key := range keys {
				g.Go(func() error {
					issue, fetchErr := a.Issue(ctx, key)
					results[i] = issueResult{Key: key, Issue: issue}
					if fetchErr != nil {
						logger.Debug().Err(fetchErr).Str("key", key).Msg("issue fetch failed")
						results[i].Error = fetchErr.Error()
					}
					return nil
				})
			}
			_ = g.Wait()

			if err = renderIssues(cmd.OutOrStdout(), output, results); err != nil {
				return err
			}
			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return &ExitError{
					ExitCode: ExitPartialFailure,
					Reason:   fmt.Sprintf("%d of %d issues could not be fetched", failed, len(results)),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	return cmd
}

func renderIssues(w io.Writer, output string, results []issueResult) error {
	switch output {
	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(tw, "Key\tStatus\tType\tSummary")
		fmt.Fprintln(tw, "---\t------\t----\t-------")
		for _, r := range results {
			if r.Issue == nil {
				fmt.Fprintf(tw, "%s\t-\t-\terror: %s\n", r.Key, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Issue.Key, orDash(r.Issue.StatusName()), orDash(issueType(r.Issue)), r.Issue.Fields.Summary)
		}
		return tw.Flush()
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		return fmt.Errorf("%w: %q", errInvalidOutput, output)
	}
}

// NewSearchCmd creates the search command, which runs a JQL query through the cache.
func NewSearchCmd(lookupEnv func(string) (string, bool)) *cobra.Command {
	var (
		output string
		limit  int
	)

	cmd := &cobra.Command{
		Use:     "search <jql>",
		Short:   "Run a JQL search",
		Example: `  jirafocus search "project = PROJ AND status = Done" --limit 20`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, backend, err := loadApp(cmd, lookupEnv, app.WithoutPriming())
			if err != nil {
				return err
			}
			defer func() {
				a.Unload()
				_ = backend.Close()
			}()

			results, err := a.Search(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}

			switch output {
			case outputJSON:
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			case outputTable:
				rows := make([]issueResult, 0, len(results.Issues))
				for _, issue := range results.Issues {
					rows = append(rows, issueResult{Key: issue.Key, Issue: issue})
				}
				if err = renderIssues(cmd.OutOrStdout(), outputTable, rows); err != nil {
					return err
				}
				cmd.Printf("\nShowing %d of %d issues\n", len(results.Issues), results.Total)
				return nil
			default:
				return fmt.Errorf("%w: %q", errInvalidOutput, output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table or json")
	cmd.Flags().IntVar(&limit, "limit", app.DefaultSearchLimit, "maximum number of issues")
	return cmd
}

// uniqueKeys drops repeated keys, keeping the first occurrence.
func uniqueKeys(args []string) []string {
	seen := make(map[string]bool, len(args))
	out := make([]string, 0, len(args))
	for _, key := range args {
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func issueType(issue *jira.Issue) string {
	if issue.Fields.IssueType == nil {
		return ""
	}
	return issue.Fields.IssueType.Name
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

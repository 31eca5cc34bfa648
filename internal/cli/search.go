package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/shell"
)

// RecordsResult is the JSON payload of search and list.
type RecordsResult struct {
	Schema  string              `json:"schema"`
	Count   int                 `json:"count"`
	Records []map[string]string `json:"records"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <FIELD> <value>",
		Short: "Find records whose field equals a value",
		Long: `Find records whose field equals the value, ignoring case.

Only whitelisted fields can be searched (PARTKEY, NAME, BRAND and TYPE for
the part schema). The match is exact, not a substring match.

Example:
  partdb search NAME bolt
  partdb search BRAND "Brand#13" --format json`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(rootOpts, args[0], strings.Join(args[1:], " "), cmd)
		},
	}

	return cmd
}

func runSearch(opts *RootOptions, field, value string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd, true)
	if err != nil {
		return err
	}

	seq, err := sess.svc.Search(field, value)
	if err != nil {
		return sess.formatter.Fail("search rejected", err)
	}

	recs := slices.Collect(seq)
	sess.formatter.VerboseLog("%d of %d record(s) matched", len(recs), sess.svc.Len())
	return outputRecords(sess, recs, "no matching records")
}

// outputRecords prints records as an aligned table or a JSON RecordsResult.
func outputRecords(sess *session, recs []record.Record, empty string) error {
	f := sess.formatter
	if f.Format == "json" {
		result := RecordsResult{
			Schema:  sess.schema.Name,
			Count:   len(recs),
			Records: make([]map[string]string, 0, len(recs)),
		}
		for _, rec := range recs {
			result.Records = append(result.Records, rec.Map())
		}
		return f.Success(result)
	}

	if len(recs) == 0 {
		fmt.Fprintln(f.Writer, empty)
		return nil
	}
	styles := shell.NewStyles(lipgloss.NewRenderer(f.Writer), shell.DefaultTheme)
	fmt.Fprint(f.Writer, styles.RenderTable(sess.schema, recs))
	return nil
}

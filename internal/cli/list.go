package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/record"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Limit int
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print records in file order",
		Long: `Print records in file order.

Example:
  partdb list
  partdb list --limit 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum records to print (0 = all)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions, cmd, true)
	if err != nil {
		return err
	}

	recs := make([]record.Record, 0, sess.svc.Len())
	for rec := range sess.svc.All() {
		if opts.Limit > 0 && len(recs) == opts.Limit {
			break
		}
		recs = append(recs, rec)
	}
	sess.formatter.VerboseLog("Listing %d of %d record(s)", len(recs), sess.svc.Len())

	return outputRecords(sess, recs, "no records")
}

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/record"
)

// MutationResult is the JSON payload of insert, update and delete.
type MutationResult struct {
	Op      string            `json:"op"`
	Key     int64             `json:"key"`
	Applied bool              `json:"applied"`
	Record  map[string]string `json:"record,omitempty"`
}

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	AutoKey bool
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <field>...",
		Short: "Append a record",
		Long: `Append a record and write the file.

Pass every field in schema order. With --auto-key, leave out the key and
the next free key (largest key + 1) is used. Inserting a key that already
exists is rejected.

Example:
  partdb insert 2 Nut ACME "Brand#1" "STANDARD BRASS" 7 "SM BOX" 0.10 ""
  partdb insert --auto-key Washer Globex X Flat L Jar "" "zinc plated"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.AutoKey, "auto-key", false, "assign the next free key")

	return cmd
}

func runInsert(opts *InsertOptions, fields []string, cmd *cobra.Command) error {
	sess, err := openSession(opts.RootOptions, cmd, true)
	if err != nil {
		return err
	}

	if opts.AutoKey {
		key := strconv.FormatInt(sess.svc.NextKey(), 10)
		fields = append([]string{key}, fields...)
	}

	rec, err := sess.svc.InsertFields(fields)
	if err != nil {
		return sess.formatter.Fail("insert failed", err)
	}

	return outputMutation(sess, MutationResult{Op: "insert", Key: rec.Key(), Applied: true, Record: rec.Map()})
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <key> <field>...",
		Short: "Replace the record with a key",
		Long: `Replace the first record with the key and write the file.

The replacement is given in full: the key followed by every other field in
schema order. Exits 1 when no record has the key.

Example:
  partdb update 1 Nut ACME X Y S Bag 0.10 ""`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runUpdate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd, true)
	if err != nil {
		return err
	}

	key, err := record.ParseKey(args[0])
	if err != nil {
		return sess.formatter.Fail("update rejected", err)
	}
	rec, err := sess.svc.ParseRecord(args)
	if err != nil {
		return sess.formatter.Fail("update rejected", err)
	}

	ok, err := sess.svc.Update(key, rec)
	if err != nil {
		return sess.formatter.Fail("update failed", err)
	}
	if !ok {
		return notFound(sess, "update", key)
	}

	return outputMutation(sess, MutationResult{Op: "update", Key: key, Applied: true, Record: rec.Map()})
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove the record with a key",
		Long: `Remove the first record with the key and write the file.
Exits 1 when no record has the key.

Example:
  partdb delete 2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runDelete(opts *RootOptions, keyText string, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd, true)
	if err != nil {
		return err
	}

	key, err := record.ParseKey(keyText)
	if err != nil {
		return sess.formatter.Fail("delete rejected", err)
	}

	ok, err := sess.svc.Delete(key)
	if err != nil {
		return sess.formatter.Fail("delete failed", err)
	}
	if !ok {
		return notFound(sess, "delete", key)
	}

	return outputMutation(sess, MutationResult{Op: "delete", Key: key, Applied: true})
}

func notFound(sess *session, op string, key int64) error {
	msg := fmt.Sprintf("no record with %s %d", sess.schema.KeyField().Name, key)
	_ = sess.formatter.Error(ErrCodeNotFound, msg, MutationResult{Op: op, Key: key})
	return NewExitError(ExitFailure, msg)
}

func outputMutation(sess *session, result MutationResult) error {
	if sess.formatter.Format == "json" {
		return sess.formatter.Success(result)
	}

	verb := map[string]string{"insert": "inserted", "update": "updated", "delete": "deleted"}[result.Op]
	fmt.Fprintf(sess.formatter.Writer, "%s %s %d\n", verb, sess.schema.KeyField().Name, result.Key)
	return nil
}

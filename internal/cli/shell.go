package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/partdb/internal/shell"
	"github.com/roach88/partdb/internal/store"
)

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell (default)",
		Long: `Start the interactive record shell.

Pick an operation from the menu by number, or type a one-line command:

  search NAME bolt
  update 1 Nut ACME X Y S Bag 0.10 ''
  delete 2

Example:
  partdb shell --file parts.tbl
  partdb --schema universal -f inventory.txt`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(rootOpts, cmd)
		},
	}

	return cmd
}

func runShell(opts *RootOptions, cmd *cobra.Command) error {
	sess, err := openSession(opts, cmd, false)
	if err != nil {
		return err
	}

	switch {
	case errors.Is(sess.loadErr, store.ErrFileNotFound):
		fmt.Fprintf(cmd.ErrOrStderr(), "%s not found, starting with no records\n", sess.cfg.File)
	case sess.loadErr != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\nstarting with no records; saving will overwrite the file\n", sess.loadErr)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			sess.logger.Info("received signal, leaving shell", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sh := shell.New(sess.svc, cmd.InOrStdin(), cmd.OutOrStdout(), shell.WithLogger(sess.logger))
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(cmd.ErrOrStderr(), "shell error: %v\n", err)
		return WrapExitError(ExitFailure, "shell error", err)
	}
	return nil
}

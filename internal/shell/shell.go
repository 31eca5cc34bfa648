// Package shell is the interactive front end of partdb.
//
// It reads commands line by line. A bare menu number or command name walks
// the user through the operation with prompts; a command followed by
// arguments runs in one line, with arguments split like a POSIX shell
// ("update 3 'Hex Bolt' ..."). Data errors are printed and the loop carries
// on. EOF, exit or context cancellation end it.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/kballard/go-shellquote"

	"github.com/roach88/partdb/internal/crud"
	"github.com/roach88/partdb/internal/record"
	"github.com/roach88/partdb/internal/store"
)

const menu = "1) Insert  2) Search  3) Update  4) Delete  5) List  6) Save  7) Exit"

// errExit ends the loop without an error.
var errExit = errors.New("exit")

// Shell runs the interactive loop over a crud.Service.
type Shell struct {
	svc    *crud.Service
	in     *bufio.Reader
	out    io.Writer
	styles Styles
	logger *slog.Logger

	// lines is fed by a single reader goroutine, so a read abandoned on
	// cancellation hands its line to the next readLine instead of losing it.
	lines      chan lineResult
	readerOnce sync.Once
}

type lineResult struct {
	line string
	err  error
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger used for unexpected failures.
func WithLogger(l *slog.Logger) Option {
	return func(sh *Shell) {
		if l != nil {
			sh.logger = l
		}
	}
}

// WithStyles overrides the styles derived from the output writer.
func WithStyles(st Styles) Option {
	return func(sh *Shell) { sh.styles = st }
}

// New creates a shell reading commands from in and writing to out.
func New(svc *crud.Service, in io.Reader, out io.Writer, opts ...Option) *Shell {
	sh := &Shell{
		svc:    svc,
		in:     bufio.NewReader(in),
		out:    out,
		styles: NewStyles(lipgloss.NewRenderer(out), DefaultTheme),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sh)
	}
	return sh
}

// Run prints the menu and processes commands until exit, EOF or ctx is
// done. Only cancellation is returned as an error.
func (sh *Shell) Run(ctx context.Context) error {
	sh.printf("%s\n", sh.styles.Title.Render(
		fmt.Sprintf("partdb: %d record(s), schema %s", sh.svc.Len(), sh.svc.Schema().Name)))
	sh.printf("%s\n", menu)

	for {
		line, err := sh.prompt(ctx, "> ")
		if err != nil {
			return sh.finish(err)
		}

		args, err := shellquote.Split(line)
		if err != nil {
			sh.errorf("%v", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		if err := sh.dispatch(ctx, args); err != nil {
			return sh.finish(err)
		}
	}
}

func (sh *Shell) finish(err error) error {
	switch {
	case errors.Is(err, errExit), errors.Is(err, io.EOF):
		sh.printf("bye\n")
		return nil
	default:
		return err
	}
}

func (sh *Shell) dispatch(ctx context.Context, args []string) error {
	cmd, rest := strings.ToLower(args[0]), args[1:]

	switch cmd {
	case "1", "insert":
		if len(rest) > 0 {
			sh.insert(rest)
			return nil
		}
		return sh.insertPrompted(ctx)
	case "2", "search":
		if len(rest) > 0 {
			sh.search(rest[0], strings.Join(rest[1:], " "))
			return nil
		}
		return sh.searchPrompted(ctx)
	case "3", "update":
		if len(rest) > 0 {
			sh.updateArgs(rest)
			return nil
		}
		return sh.updatePrompted(ctx)
	case "4", "delete":
		if len(rest) > 0 {
			sh.deleteArgs(rest)
			return nil
		}
		return sh.deletePrompted(ctx)
	case "5", "list":
		sh.list()
	case "6", "save":
		sh.save()
	case "7", "exit", "quit":
		return errExit
	case "help", "?":
		sh.help()
	default:
		sh.errorf("unknown command %q (type help)", args[0])
	}
	return nil
}

func (sh *Shell) insert(fields []string) {
	rec, err := sh.svc.InsertFields(fields)
	sh.reportMutation(err, fmt.Sprintf("inserted %s %d", sh.keyName(), rec.Key()))
}

func (sh *Shell) insertPrompted(ctx context.Context) error {
	s := sh.svc.Schema()
	fields := make([]string, s.Width())

	next := sh.svc.NextKey()
	for i, f := range s.Fields {
		label := f.Name + ": "
		if i == 0 {
			label = fmt.Sprintf("%s [%d]: ", f.Name, next)
		}
		v, err := sh.prompt(ctx, label)
		if err != nil {
			return err
		}
		fields[i] = v
	}
	if fields[0] == "" {
		fields[0] = fmt.Sprint(next)
	}

	sh.insert(fields)
	return nil
}

func (sh *Shell) search(field, value string) {
	seq, err := sh.svc.Search(field, value)
	if err != nil {
		sh.errorf("%v", err)
		return
	}
	sh.table(slices.Collect(seq), "no matching records")
}

func (sh *Shell) searchPrompted(ctx context.Context) error {
	s := sh.svc.Schema()
	field, err := sh.prompt(ctx, fmt.Sprintf("Field (%s): ", strings.Join(s.SearchableNames(), ", ")))
	if err != nil {
		return err
	}
	if _, err := s.SearchField(field); err != nil {
		sh.errorf("%v", err)
		return nil
	}

	value, err := sh.prompt(ctx, "Value: ")
	if err != nil {
		return err
	}
	sh.search(field, value)
	return nil
}

// updateArgs handles "update <key> <field2> ... <fieldN>".
func (sh *Shell) updateArgs(args []string) {
	key, ok := sh.parseKey(args[0])
	if !ok {
		return
	}
	rec, err := sh.svc.ParseRecord(args)
	if err != nil {
		sh.errorf("%v", err)
		return
	}
	sh.update(key, rec)
}

func (sh *Shell) updatePrompted(ctx context.Context) error {
	text, err := sh.prompt(ctx, sh.keyName()+": ")
	if err != nil {
		return err
	}
	key, ok := sh.parseKey(text)
	if !ok {
		return nil
	}
	current, found := sh.svc.Get(key)
	if !found {
		sh.warnf("no record with %s %d", sh.keyName(), key)
		return nil
	}

	s := sh.svc.Schema()
	fields := current.Fields()
	for i := 1; i < s.Width(); i++ {
		v, err := sh.prompt(ctx, fmt.Sprintf("%s [%s]: ", s.Fields[i].Name, fields[i]))
		if err != nil {
			return err
		}
		if v != "" {
			fields[i] = v
		}
	}

	rec, err := sh.svc.ParseRecord(fields)
	if err != nil {
		sh.errorf("%v; record unchanged", err)
		return nil
	}
	sh.update(key, rec)
	return nil
}

func (sh *Shell) update(key int64, rec record.Record) {
	ok, err := sh.svc.Update(key, rec)
	if !ok && err == nil {
		sh.warnf("no record with %s %d", sh.keyName(), key)
		return
	}
	sh.reportMutation(err, fmt.Sprintf("updated %s %d", sh.keyName(), key))
}

func (sh *Shell) deleteArgs(args []string) {
	if len(args) != 1 {
		sh.errorf("usage: delete <%s>", sh.keyName())
		return
	}
	key, ok := sh.parseKey(args[0])
	if !ok {
		return
	}
	sh.delete(key)
}

func (sh *Shell) deletePrompted(ctx context.Context) error {
	text, err := sh.prompt(ctx, sh.keyName()+": ")
	if err != nil {
		return err
	}
	key, ok := sh.parseKey(text)
	if !ok {
		return nil
	}
	current, found := sh.svc.Get(key)
	if !found {
		sh.warnf("no record with %s %d", sh.keyName(), key)
		return nil
	}

	sh.table([]record.Record{current}, "")
	answer, err := sh.prompt(ctx, "Delete this record? [y/N]: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		sh.printf("kept %s %d\n", sh.keyName(), key)
		return nil
	}

	sh.delete(key)
	return nil
}

func (sh *Shell) delete(key int64) {
	ok, err := sh.svc.Delete(key)
	if !ok && err == nil {
		sh.warnf("no record with %s %d", sh.keyName(), key)
		return
	}
	sh.reportMutation(err, fmt.Sprintf("deleted %s %d", sh.keyName(), key))
}

func (sh *Shell) list() {
	sh.table(slices.Collect(sh.svc.All()), "no records")
}

func (sh *Shell) save() {
	if err := sh.svc.Save(); err != nil {
		sh.errorf("%v", err)
		return
	}
	sh.printf("%s\n", sh.styles.OK.Render(fmt.Sprintf("saved %d record(s)", sh.svc.Len())))
}

func (sh *Shell) help() {
	s := sh.svc.Schema()
	sh.printf("%s\n", menu)
	sh.printf("%s\n", sh.styles.Help.Render("one-line forms:"))
	for _, usage := range []string{
		fmt.Sprintf("  insert <%s>", strings.Join(s.Names(), "> <")),
		fmt.Sprintf("  search <%s> <value>", strings.Join(s.SearchableNames(), "|")),
		fmt.Sprintf("  update <%s>", strings.Join(s.Names(), "> <")),
		fmt.Sprintf("  delete <%s>", sh.keyName()),
		"  list | save | help | exit",
	} {
		sh.printf("%s\n", sh.styles.Help.Render(usage))
	}
}

// reportMutation prints the outcome of a write-through mutation. A persist
// failure means the change happened in memory only.
func (sh *Shell) reportMutation(err error, done string) {
	switch {
	case err == nil:
		sh.printf("%s\n", sh.styles.OK.Render(done))
	case errors.Is(err, store.ErrPersist):
		sh.warnf("%s in memory, not saved: %v", done, err)
	default:
		sh.errorf("%v", err)
	}
}

func (sh *Shell) keyName() string { return sh.svc.Schema().KeyField().Name }

func (sh *Shell) parseKey(text string) (int64, bool) {
	key, err := record.ParseKey(strings.TrimSpace(text))
	if err != nil {
		sh.errorf("%v", err)
		return 0, false
	}
	return key, true
}

func (sh *Shell) table(recs []record.Record, empty string) {
	if len(recs) == 0 {
		if empty != "" {
			sh.printf("%s\n", empty)
		}
		return
	}
	sh.printf("%s", sh.styles.RenderTable(sh.svc.Schema(), recs))
}

// prompt writes label and reads one line with the trailing newline removed.
func (sh *Shell) prompt(ctx context.Context, label string) (string, error) {
	sh.printf("%s", sh.styles.Prompt.Render(label))
	return sh.readLine(ctx)
}

func (sh *Shell) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sh.readerOnce.Do(func() {
		sh.lines = make(chan lineResult)
		go sh.readLines()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-sh.lines:
		if !ok {
			return "", io.EOF
		}
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// readLines forwards input lines up to and including the first read error,
// then closes lines. At most one goroutine per Shell ever blocks on input.
func (sh *Shell) readLines() {
	defer close(sh.lines)
	for {
		line, err := sh.in.ReadString('\n')
		sh.lines <- lineResult{line, err}
		if err != nil {
			return
		}
	}
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) warnf(format string, args ...any) {
	sh.printf("%s\n", sh.styles.Warn.Render(fmt.Sprintf(format, args...)))
}

func (sh *Shell) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	sh.logger.Debug("shell error", "error", msg)
	sh.printf("%s\n", sh.styles.Error.Render("error: "+msg))
}

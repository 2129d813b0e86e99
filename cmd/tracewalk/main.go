package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jask/tracewalk/internal/catalog"
	"github.com/jask/tracewalk/internal/config"
	"github.com/jask/tracewalk/internal/journal"
	"github.com/jask/tracewalk/internal/logging"
	"github.com/jask/tracewalk/internal/mockbackend"
	"github.com/jask/tracewalk/internal/session"
	"github.com/jask/tracewalk/internal/tracing"
	"github.com/jask/tracewalk/internal/tui"
)

const usage = `usage: tracewalk [command]

commands:
  (none)        interactive console
  run           create user, transfer and place order without the console
  mock          serve echo user, payment and order services
  history       print recent journal entries
  init-config   write the default configuration file
`

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warn: load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "":
		err = runConsole(ctx)
	case "run":
		err = runHeadlessCmd(ctx, args)
	case "mock":
		err = runMock(ctx)
	case "history":
		err = runHistory(ctx, args)
	case "init-config":
		err = runInitConfig(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// env bundles what every command shares.
type env struct {
	cfg      config.Config
	log      *zap.Logger
	recorder session.Recorder
	closers  []func() error
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

// setup loads config and starts logging, tracing and the journal. console is
// where log lines are mirrored; nil keeps them in the log file only.
func setup(ctx context.Context, console io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	e := &env{cfg: cfg}

	logger, syncLog, err := logging.New(logging.Options{Path: cfg.Log.Path, Level: cfg.Log.Level, Console: console})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	e.log = logger
	e.closers = append(e.closers, syncLog)

	tp, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("tracing: %w", err)
	}
	e.closers = append(e.closers, func() error { return tp.Shutdown(context.Background()) })

	if cfg.Journal.Path != "" {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("journal: %w", err)
		}
		e.closers = append(e.closers, db.Close)
		e.recorder = journal.NewRepo(db)
	}
	return e, nil
}

func (e *env) controller() *session.Controller {
	return session.New(e.cfg, session.Options{Recorder: e.recorder, Logger: e.log})
}

func runConsole(ctx context.Context) error {
	e, err := setup(ctx, nil)
	if err != nil {
		return err
	}
	defer e.Close()

	p := tea.NewProgram(tui.New(ctx, e.controller()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

func runHeadlessCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	product := fs.String("product", catalog.Options()[0].Label, "product to order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := catalog.Lookup(*product)
	if err != nil {
		return err
	}

	e, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()
	return runHeadless(ctx, e.controller(), p, os.Stdout)
}

// runHeadless drives the three steps in order and prints each response. It
// stops at the first failed step.
func runHeadless(ctx context.Context, ctrl *session.Controller, p catalog.Product, w io.Writer) error {
	ctrl.SelectProduct(p)
	steps := []struct {
		title string
		do    func(context.Context) (session.Result, error)
	}{
		{"1. User Creation", ctrl.CreateUser},
		{"2. Transfer amount", ctrl.TransferFunds},
		{"3. Place order", ctrl.PlaceOrder},
	}
	for _, step := range steps {
		res, err := step.do(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", step.title, err)
		}
		fmt.Fprintln(w, step.title)
		if !res.IsOK() {
			return fmt.Errorf("%s: %s", step.title, res.Message)
		}
		fmt.Fprintln(w, tui.FormatJSON(res.Value))
	}
	fmt.Fprintln(w, "Order Placed!")
	return nil
}

func runMock(ctx context.Context) error {
	e, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.Close()
	return mockbackend.Serve(ctx, e.cfg.Mock, e.log)
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	n := fs.Int("n", 20, "number of entries")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Journal.Path == "" {
		return errors.New("journal disabled: set journal.path or TRACEWALK_JOURNAL_PATH")
	}
	db, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	defer db.Close()
	return printHistory(ctx, db, *n, os.Stdout)
}

func printHistory(ctx context.Context, db *sql.DB, n int, w io.Writer) error {
	entries, err := journal.NewRepo(db).Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, en := range entries {
		fmt.Fprintf(w, "%s  %-15s %-10s %6dms  %s  %s\n",
			en.StartedAt.Local().Format("2006-01-02 15:04:05"),
			en.Action, en.Outcome, en.Duration.Milliseconds(), en.TraceID, en.Message)
	}
	return nil
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ContinueOnError)
	path := fs.String("path", config.DefaultPath(), "where to write the config")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.WriteDefault(*path); err != nil {
		return err
	}
	fmt.Println("wrote", *path)
	return nil
}

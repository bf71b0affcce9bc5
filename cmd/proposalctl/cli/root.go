// Package cli implements proposalctl, a terminal front end for the proposal
// wizard. Every invocation reopens the persisted draft from the data directory.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/proposal-wizard/internal/app"
	"github.com/odyssey-erp/proposal-wizard/internal/draftstore"
	"github.com/odyssey-erp/proposal-wizard/internal/wizard"
	"github.com/odyssey-erp/proposal-wizard/jobs"
	"github.com/odyssey-erp/proposal-wizard/report"
)

// SyncEnqueuer hands proposal ids to the background sync worker.
type SyncEnqueuer interface {
	EnqueueProposalSync(ctx context.Context, proposalID string) (bool, error)
	Close() error
}

// Options carries the collaborators a command tree uses. Zero values fall back
// to the process streams and network clients built from flags.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// NewExporter builds the PDF backend for the render server at serverURL.
	NewExporter func(serverURL string) wizard.Exporter
	// NewEnqueuer connects to the job queue at redisAddr.
	NewEnqueuer func(redisAddr string) (SyncEnqueuer, error)
	Store       []wizard.Option
}

type settings struct {
	dataDir   string
	serverURL string
	redisAddr string
	verbose   bool
}

type env struct {
	opts     Options
	settings settings
}

// NewRootCommand assembles the proposalctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.NewExporter == nil {
		opts.NewExporter = func(serverURL string) wizard.Exporter {
			return report.NewAPIClient(serverURL, nil)
		}
	}
	if opts.NewEnqueuer == nil {
		opts.NewEnqueuer = func(redisAddr string) (SyncEnqueuer, error) {
			return jobs.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
		}
	}

	e := &env{opts: opts}
	defaults := app.Config{StorageDir: "./data", RenderURL: "http://127.0.0.1:3000", RedisAddr: "127.0.0.1:6379"}
	if cfg, err := app.LoadConfig(); err == nil {
		defaults = *cfg
	}

	root := &cobra.Command{
		Use:           "proposalctl",
		Short:         "Drive proposal drafts from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&e.settings.dataDir, "data-dir", defaults.StorageDir, "Directory holding the draft and saved proposals")
	flags.StringVar(&e.settings.serverURL, "server", defaults.RenderURL, "Base URL of the proposald render service")
	flags.StringVar(&e.settings.redisAddr, "redis", defaults.RedisAddr, "Redis address of the sync queue")
	flags.BoolVarP(&e.settings.verbose, "verbose", "v", false, "Log storage activity to stderr")

	root.AddCommand(
		e.newCmd(),
		e.showCmd(),
		e.clientCmd(),
		e.equipmentCmd(),
		e.pricingCmd(),
		e.nextCmd(),
		e.saveCmd(),
		e.submitCmd(),
		e.listCmd(),
		e.loadCmd(),
		e.renderCmd(),
		e.syncCmd(),
	)
	return root
}

func (e *env) logger() *slog.Logger {
	level := slog.LevelWarn
	if e.settings.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(e.opts.Stderr, &slog.HandlerOptions{Level: level}))
}

type session struct {
	store   *wizard.Store
	library *draftstore.Library
}

// open rehydrates the wizard from the data directory.
func (e *env) open(ctx context.Context) (*session, error) {
	storage, err := draftstore.NewFileStorage(e.settings.dataDir)
	if err != nil {
		return nil, err
	}
	logger := e.logger()
	library := draftstore.NewLibrary(storage)
	opts := []wizard.Option{
		wizard.WithPersister(draftstore.NewAdapter(storage, logger)),
		wizard.WithRepository(library),
		wizard.WithExporter(e.opts.NewExporter(e.settings.serverURL)),
		wizard.WithLogger(logger),
	}
	opts = append(opts, e.opts.Store...)
	return &session{store: wizard.Open(ctx, opts...), library: library}, nil
}

func (e *env) out() io.Writer {
	return e.opts.Stdout
}

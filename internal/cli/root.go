// Package cli is a developer front end for the social store. Each command
// opens the configured kv backend, loads the store, applies one operation
// and waits for its writes before exiting.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tentkids/internal/auth"
	"tentkids/internal/config"
	"tentkids/internal/gate"
	"tentkids/internal/i18n"
	"tentkids/internal/kv"
	"tentkids/internal/media"
	"tentkids/internal/store"
	"tentkids/pkg/logger"
)

var ValidFormats = []string{"text", "json"}

// RootOptions holds the global flags and the dependencies shared by subcommands.
type RootOptions struct {
	Verbose bool
	Format  string
	Backend string

	// Unset fields are built from the environment in PersistentPreRunE.
	config    *config.Config
	logger    *zap.Logger
	kv        kv.Store
	directory auth.Directory
	media     *media.Storage
	clock     func() time.Time
	gateOpts  []gate.Option
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tentkids",
		Short: "TentKids social store from the terminal",
		Long: `TentKids keeps a child's feed, stories, friends, notifications and
videos in a local key-value store.

Every command loads the persisted state, applies one operation and waits
for the write to land. The backend is chosen by KV_BACKEND (sqlite, redis,
postgres or memory) or --backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.setup()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "kv backend, overrides KV_BACKEND")

	cmd.AddCommand(
		NewShowCommand(opts),
		NewLanguageCommand(opts),
		NewOnboardCommand(opts),
		NewProfileCommand(opts),
		NewTermsCommand(opts),
		NewSignOutCommand(opts),
		NewPostCommand(opts),
		NewStoryCommand(opts),
		NewFriendCommand(opts),
		NewNotificationsCommand(opts),
		NewVideoCommand(opts),
		NewGateCommand(opts),
		NewAuthCommand(opts),
		NewCatalogCommand(opts),
	)

	return cmd
}

func (o *RootOptions) setup() error {
	if o.config == nil {
		o.config = config.Load()
	}
	if o.Backend != "" {
		o.config.KVBackend = o.Backend
	}
	if o.logger == nil {
		if o.Verbose {
			l, err := logger.NewLogger()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create logger", err)
			}
			o.logger = l
		} else {
			o.logger = zap.NewNop()
		}
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return nil
}

func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withStore runs fn against a freshly loaded store and waits for every write
// it queued.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store) error) error {
	ctx := commandContext(cmd)

	backend := o.kv
	if backend == nil {
		b, err := kv.Open(ctx, o.config, o.logger)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open kv store", err)
		}
		defer b.Close()
		backend = b
	}

	st := store.New(backend, i18n.MustLoad(), o.logger,
		store.WithClock(o.clock),
		store.WithPersistTimeout(o.config.PersistTimeout),
	)
	defer st.Close()

	if err := st.Load(ctx); err != nil {
		o.output(cmd).VerboseLog("load failed, using defaults: %v", err)
	}

	runErr := fn(ctx, st)

	flushCtx, cancel := context.WithTimeout(ctx, o.config.PersistTimeout+time.Second)
	defer cancel()
	if err := st.Flush(flushCtx); err != nil && runErr == nil {
		return WrapExitError(ExitFailure, "failed to persist changes", err)
	}
	return runErr
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tentkids/internal/auth"
	"tentkids/internal/db"
	"tentkids/internal/store"
	"tentkids/pkg/validator"
)

// AuthOptions holds flags shared by the auth subcommands.
type AuthOptions struct {
	*RootOptions
	Password    string
	AcceptTerms bool
	Token       string
}

func NewAuthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Parent account sign-up, sign-in and sign-out",
	}

	signup := &cobra.Command{
		Use:   "signup <email>",
		Short: "Create a parent account and its child profile record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withProvider(cmd, func(ctx context.Context, p *auth.Provider) error {
				id, err := p.SignUp(ctx, args[0], opts.Password, opts.AcceptTerms)
				if err != nil {
					return authError(err)
				}
				return opts.printSession(cmd, p, "signed up "+id.Email)
			})
		},
	}
	signup.Flags().StringVar(&opts.Password, "password", "", "account password")
	signup.Flags().BoolVar(&opts.AcceptTerms, "accept-terms", false, "accept the terms of use")

	signin := &cobra.Command{
		Use:   "signin <email>",
		Short: "Sign in and print a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withProvider(cmd, func(ctx context.Context, p *auth.Provider) error {
				id, err := p.SignIn(ctx, args[0], opts.Password)
				if err != nil {
					return authError(err)
				}
				return opts.printSession(cmd, p, "signed in "+id.Email)
			})
		},
	}
	signin.Flags().StringVar(&opts.Password, "password", "", "account password")

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Check a session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withProvider(cmd, func(ctx context.Context, p *auth.Provider) error {
				if _, err := p.Restore(opts.Token); err != nil {
					return WrapExitError(ExitFailure, "session rejected", err)
				}
				return opts.printSession(cmd, p, "")
			})
		},
	}
	whoami.Flags().StringVar(&opts.Token, "token", "", "session token from signin")

	signout := &cobra.Command{
		Use:   "signout",
		Short: "End the session and erase the local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withProvider(cmd, func(ctx context.Context, p *auth.Provider) error {
				if _, err := p.Restore(opts.Token); err != nil {
					return WrapExitError(ExitFailure, "session rejected", err)
				}
				return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
					cancel := p.Subscribe(func(ev auth.SessionEvent) {
						if ev.Type == auth.SignedOut {
							st.SignOut()
						}
					})
					defer cancel()

					if err := p.SignOut(ctx); err != nil {
						return authError(err)
					}
					return opts.output(cmd).Mutation("sign_out", true, nil, "signed out")
				})
			})
		},
	}
	signout.Flags().StringVar(&opts.Token, "token", "", "session token from signin")

	cmd.AddCommand(signup, signin, whoami, signout)
	return cmd
}

// provider builds an identity provider over the injected directory, or over
// Postgres when DATABASE_URL is set. Without either, accounts live only for
// this process. closeFn receives the database close func, if one was opened.
func (o *RootOptions) provider(closeFn *func()) (*auth.Provider, error) {
	if o.config.JWTSecret == "" {
		return nil, NewExitError(ExitCommandError, "JWT_SECRET not set")
	}

	dir := o.directory
	if dir == nil && o.config.DatabaseURL != "" {
		database, err := db.NewDB(o.config.DatabaseURL)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to connect to database", err)
		}
		if err := database.InitSchema(); err != nil {
			database.Close()
			return nil, WrapExitError(ExitCommandError, "failed to initialize schema", err)
		}
		*closeFn = func() { database.Close() }
		dir = database
	}
	if dir == nil {
		o.logger.Warn("DATABASE_URL not set, accounts are not kept after exit")
		dir = auth.NewMemoryDirectory()
		o.directory = dir
	}

	return auth.NewProvider(dir, o.config.JWTSecret, o.config.SessionTTL, o.logger.Named("auth")), nil
}

func (o *RootOptions) withProvider(cmd *cobra.Command, fn func(ctx context.Context, p *auth.Provider) error) error {
	closeDB := func() {}
	p, err := o.provider(&closeDB)
	if err != nil {
		return err
	}
	defer closeDB()
	p.SetClock(o.clock)
	return fn(commandContext(cmd), p)
}

func (o *AuthOptions) printSession(cmd *cobra.Command, p *auth.Provider, headline string) error {
	sess, ok := p.Session()
	if !ok {
		return NewExitError(ExitFailure, "no active session")
	}
	text := fmt.Sprintf("user:    %s (%s)\ntoken:   %s\nexpires: %s",
		sess.User.Email, sess.User.ID, sess.Token, sess.ExpiresAt.Format("2006-01-02 15:04:05Z07:00"))
	if headline != "" {
		text = headline + "\n" + text
	}
	o.logger.Debug("session issued", zap.String("user_id", sess.User.ID.String()))
	return o.output(cmd).Success(sess, text)
}

func authError(err error) error {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return WrapExitError(ExitCommandError, "invalid input", err)
	case errors.Is(err, auth.ErrTermsNotAccepted),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotSignedIn):
		return WrapExitError(ExitFailure, "request refused", err)
	default:
		return err
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tentkids/internal/auth"
	"tentkids/internal/i18n"
	"tentkids/internal/models"
	"tentkids/internal/store"
	"tentkids/pkg/validator"
)

// ShowView is the json form of the show command.
type ShowView struct {
	Language    models.Language `json:"language"`
	RTL         bool            `json:"rtl"`
	Profile     *models.Profile `json:"profile"`
	Onboarded   bool            `json:"onboarded"`
	AgreedTerms bool            `json:"agreedTerms"`
	Posts       int             `json:"posts"`
	Visible     int             `json:"visiblePosts"`
	Stories     int             `json:"stories"`
	Friends     int             `json:"friends"`
	Pending     int             `json:"pendingRequests"`
	Unread      int             `json:"unreadNotifications"`
	Videos      int             `json:"videos"`
}

func NewShowCommand(opts *RootOptions) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Summarize the stored state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				out := opts.output(cmd)
				if full {
					snap := st.Snapshot()
					return out.Success(snap, fmt.Sprintf("%+v", snap))
				}

				v := ShowView{
					Language:    st.Language(),
					RTL:         st.IsRTL(),
					Onboarded:   st.Onboarded(),
					AgreedTerms: st.AgreedTerms(),
					Posts:       len(st.Posts()),
					Visible:     len(st.VisiblePosts()),
					Stories:     len(st.Stories()),
					Friends:     len(st.AcceptedFriends()),
					Pending:     len(st.PendingRequests()),
					Unread:      st.UnreadCount(),
					Videos:      len(st.Videos()),
				}
				if p, ok := st.Profile(); ok {
					v.Profile = &p
				}
				return out.Success(v, formatShow(v))
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print the complete state")
	return cmd
}

func formatShow(v ShowView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "language:      %s (rtl=%t)\n", v.Language, v.RTL)
	if v.Profile != nil {
		fmt.Fprintf(&b, "profile:       %s (%s) friends=%d\n", v.Profile.Nickname, v.Profile.AvatarID, v.Profile.FriendCount)
	} else {
		b.WriteString("profile:       none\n")
	}
	fmt.Fprintf(&b, "onboarded:     %t\n", v.Onboarded)
	fmt.Fprintf(&b, "agreed terms:  %t\n", v.AgreedTerms)
	fmt.Fprintf(&b, "posts:         %d (%d visible)\n", v.Posts, v.Visible)
	fmt.Fprintf(&b, "stories:       %d\n", v.Stories)
	fmt.Fprintf(&b, "friends:       %d (%d pending)\n", v.Friends, v.Pending)
	fmt.Fprintf(&b, "notifications: %d unread\n", v.Unread)
	fmt.Fprintf(&b, "videos:        %d", v.Videos)
	return b.String()
}

func NewLanguageCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lang [tag]",
		Short: "Print or set the interface language (ar, en)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				out := opts.output(cmd)
				if len(args) == 0 {
					return out.Success(st.Language(), string(st.Language()))
				}
				if _, ok := i18n.Match(args[0]); !ok {
					return NewExitError(ExitCommandError, fmt.Sprintf("unsupported language %q", args[0]))
				}
				applied := st.SetLanguage(args[0])
				return out.Mutation("set_language", applied, st.Language(), "language set to "+string(st.Language()))
			})
		},
	}
}

// OnboardOptions holds flags for the onboard command.
type OnboardOptions struct {
	*RootOptions
	Token      string
	Nickname   string
	Avatar     string
	TentColor  string
	AgreeTerms bool
}

func NewOnboardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OnboardOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Create the child profile and finish onboarding",
		Example: `  tentkids onboard --token "$TOKEN" --nickname Lulu --avatar cat --tent mint --agree-terms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return onboard(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Token, "token", "", "session token from auth signin")
	cmd.Flags().StringVar(&opts.Nickname, "nickname", "", "display nickname")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "bear", "avatar id (see catalog)")
	cmd.Flags().StringVar(&opts.TentColor, "tent", models.DefaultTentColorID, "tent colour id")
	cmd.Flags().BoolVar(&opts.AgreeTerms, "agree-terms", false, "record that the terms were accepted")
	return cmd
}

func onboard(cmd *cobra.Command, opts *OnboardOptions) error {
	if errs := validator.ValidateNickname(opts.Nickname); errs.HasErrors() {
		return WrapExitError(ExitCommandError, "invalid profile", errs)
	}
	if opts.Token == "" {
		return NewExitError(ExitFailure, "sign in first: --token is required")
	}

	var userID string
	err := opts.withProvider(cmd, func(ctx context.Context, p *auth.Provider) error {
		sess, err := p.Restore(opts.Token)
		if err != nil {
			return WrapExitError(ExitFailure, "session rejected", err)
		}
		userID = sess.User.ID.String()
		return nil
	})
	if err != nil {
		return err
	}

	return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
		p, err := models.NewProfile(models.OnboardInput{
			UserID:      userID,
			Nickname:    opts.Nickname,
			AvatarID:    opts.Avatar,
			TentColorID: opts.TentColor,
		}, st.Language(), opts.clock())
		if errors.Is(err, models.ErrUnknownAvatar) || errors.Is(err, models.ErrPremiumAvatar) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("avatar %q", opts.Avatar), err)
		}
		if err != nil {
			return err
		}

		st.SetProfile(&p)
		if opts.AgreeTerms {
			st.SetAgreedTerms(true)
		}
		st.SetOnboarded(true)
		return opts.output(cmd).Mutation("onboard", true, p, fmt.Sprintf("welcome, %s (%s)", p.Nickname, p.ID))
	})
}

func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Print the profile, or edit it with the set subcommand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				p, ok := st.Profile()
				if !ok {
					return NewExitError(ExitFailure, "no profile: run onboard first")
				}
				return rootOpts.output(cmd).Success(p, fmt.Sprintf("%s avatar=%s tent=%s status=%q friends=%d",
					p.Nickname, p.AvatarID, p.TentColor, p.Status, p.FriendCount))
			})
		},
	}
	cmd.AddCommand(newProfileSetCommand(rootOpts))
	return cmd
}

func newProfileSetCommand(opts *RootOptions) *cobra.Command {
	var nickname, avatar, tent, status string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Merge the given fields into the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u models.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("nickname") {
				if errs := validator.ValidateNickname(nickname); errs.HasErrors() {
					return WrapExitError(ExitCommandError, "invalid profile", errs)
				}
				u.Nickname = &nickname
			}
			if flags.Changed("avatar") {
				a, ok := models.FindAvatar(avatar)
				if !ok || a.Premium {
					return NewExitError(ExitCommandError, fmt.Sprintf("avatar %q is not selectable", avatar))
				}
				u.AvatarID = &a.ID
			}
			if flags.Changed("tent") {
				c, ok := models.FindTentColor(tent)
				if !ok {
					return NewExitError(ExitCommandError, fmt.Sprintf("unknown tent colour %q", tent))
				}
				u.TentColor = &c.Color
				u.TentGlow = &c.Glow
			}
			if flags.Changed("status") {
				u.Status = &status
			}

			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				if u.Nickname != nil {
					n := models.NormalizeNickname(*u.Nickname, st.Language())
					u.Nickname = &n
				}
				applied := st.UpdateProfile(u)
				p, _ := st.Profile()
				return opts.output(cmd).Mutation("update_profile", applied, p, "profile updated")
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "new nickname")
	cmd.Flags().StringVar(&avatar, "avatar", "", "new avatar id")
	cmd.Flags().StringVar(&tent, "tent", "", "new tent colour id")
	cmd.Flags().StringVar(&status, "status", "", "status line")
	return cmd
}

func NewTermsCommand(opts *RootOptions) *cobra.Command {
	var revoke bool

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Record acceptance of the terms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				st.SetAgreedTerms(!revoke)
				return opts.output(cmd).Mutation("set_agreed_terms", true, !revoke,
					fmt.Sprintf("agreed terms: %t", !revoke))
			})
		},
	}

	cmd.Flags().BoolVar(&revoke, "revoke", false, "clear the acceptance instead")
	return cmd
}

func NewSignOutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Erase every stored slice and restore the seed content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				st.SignOut()
				return opts.output(cmd).Mutation("sign_out", true, nil, "signed out")
			})
		},
	}
}

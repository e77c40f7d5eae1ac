package cli

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tentkids/internal/gate"
	"tentkids/internal/media"
	"tentkids/internal/models"
	"tentkids/internal/store"
)

var errNoProfile = NewExitError(ExitFailure, "no profile: run onboard first")

func NewPostCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Work with the feed",
	}
	cmd.AddCommand(
		newPostAddCommand(opts),
		newPostListCommand(opts),
		newPostReactCommand(opts),
		newPostCommentCommand(opts),
		newPostReportCommand(opts),
	)
	return cmd
}

// PostAddOptions holds flags for post add.
type PostAddOptions struct {
	*RootOptions
	Image string
	Video string
}

func newPostAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PostAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Publish a post, optionally with an image or video file",
		Example: `  tentkids post add "I built a tent!" --image tent.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPost(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Image, "image", "", "image file to upload")
	cmd.Flags().StringVar(&opts.Video, "video", "", "video file to upload")
	return cmd
}

func addPost(cmd *cobra.Command, opts *PostAddOptions, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return NewExitError(ExitCommandError, "post content is empty")
	}
	if utf8.RuneCountInString(content) > models.MaxPostLength {
		return NewExitError(ExitCommandError, fmt.Sprintf("post is longer than %d characters", models.MaxPostLength))
	}

	return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
		me, ok := st.Profile()
		if !ok {
			return errNoProfile
		}

		var imageURL, videoURL string
		if opts.Image != "" {
			up, err := opts.upload(ctx, me.ID, opts.Image, media.KindImage)
			if err != nil {
				return err
			}
			imageURL = up.ObjectURL
		}
		if opts.Video != "" {
			up, err := opts.upload(ctx, me.ID, opts.Video, media.KindVideo)
			if err != nil {
				return err
			}
			videoURL = up.ObjectURL
		}

		post, applied := st.AddPost(content, imageURL, videoURL)
		return opts.output(cmd).Mutation("add_post", applied, post, "posted "+post.ID)
	})
}

func (o *RootOptions) mediaStorage() (*media.Storage, error) {
	if o.media != nil {
		return o.media, nil
	}
	if !o.config.MediaEnabled() {
		return nil, NewExitError(ExitCommandError, "attachments need MINIO_ENDPOINT and MINIO_BUCKET")
	}
	s, err := media.NewStorage(o.config.MinioEndpoint, o.config.MinioAccessKey,
		o.config.MinioSecretKey, o.config.MinioBucket, o.config.MinioUseSSL)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to connect to media storage", err)
	}
	o.media = s
	return s, nil
}

func (o *RootOptions) upload(ctx context.Context, ownerID, path string, want media.Kind) (media.Upload, error) {
	stor, err := o.mediaStorage()
	if err != nil {
		return media.Upload{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return media.Upload{}, WrapExitError(ExitCommandError, "failed to open attachment", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return media.Upload{}, fmt.Errorf("failed to stat attachment: %w", err)
	}
	contentType, err := detectContentType(f, path)
	if err != nil {
		return media.Upload{}, err
	}
	if kind, err := media.KindOf(contentType); err != nil || kind != want {
		return media.Upload{}, NewExitError(ExitCommandError,
			fmt.Sprintf("%s is %s, expected %s", filepath.Base(path), contentType, want))
	}

	up, err := stor.Put(ctx, ownerID, filepath.Base(path), contentType, f, info.Size())
	if err != nil {
		return media.Upload{}, WrapExitError(ExitFailure, "upload failed", err)
	}
	o.logger.Info("attachment uploaded", zap.String("object_key", up.ObjectKey))
	return up, nil
}

// detectContentType trusts the file extension and sniffs the first bytes otherwise.
func detectContentType(f *os.File, path string) (string, error) {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct, nil
	}
	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind attachment: %w", err)
	}
	return http.DetectContentType(head[:n]), nil
}

func newPostListCommand(opts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, newest first (reported posts are hidden)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				posts := st.VisiblePosts()
				if all {
					posts = st.Posts()
				}
				var b strings.Builder
				for _, p := range posts {
					fmt.Fprintf(&b, "%s  %s: %s", p.ID, p.AuthorNickname, p.Content)
					if p.Reported {
						b.WriteString("  [reported]")
					}
					for _, name := range models.ReactionNames {
						if n := p.Reactions.Count(name); n > 0 {
							fmt.Fprintf(&b, "  %s=%d", name, n)
						}
					}
					b.WriteString("\n")
					for _, c := range p.Comments {
						fmt.Fprintf(&b, "    %s: %s\n", c.AuthorNickname, st.T(c.CommentKey))
					}
				}
				return opts.output(cmd).Success(posts, strings.TrimRight(b.String(), "\n"))
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include reported posts")
	return cmd
}

func newPostReactCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "react <post-id> <emoji>",
		Short: "Toggle a reaction on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.ReactToPost(args[0], args[1])
				return opts.output(cmd).Mutation("react_to_post", applied, nil, "reaction toggled")
			})
		},
	}
}

func newPostCommentCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <post-id> <comment-key>",
		Short: "Leave one of the pre-approved comments (see catalog)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.IsSafeCommentKey(args[1]) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("%q is not a safe comment; choose one of %v", args[1], models.SafeCommentKeys))
			}
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				c, applied := st.AddSafeComment(args[0], args[1])
				return opts.output(cmd).Mutation("add_safe_comment", applied, c, "commented: "+st.T(c.CommentKey))
			})
		},
	}
}

func newPostReportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report <post-id>",
		Short: "Report a post; it is hidden from the feed for good",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.ReportPost(args[0])
				return opts.output(cmd).Mutation("report_post", applied, nil, "post reported")
			})
		},
	}
}

func NewStoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "List stories, or add one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				stories := st.Stories()
				lines := make([]string, 0, len(stories))
				for _, s := range stories {
					lines = append(lines, fmt.Sprintf("%s  %s %s %s", s.ID, s.AuthorNickname, s.IconName, s.Color))
				}
				return opts.output(cmd).Success(stories, strings.Join(lines, "\n"))
			})
		},
	}

	var color, icon string
	add := &cobra.Command{
		Use:   "add",
		Short: "Share a story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				story, applied := st.AddStory(color, icon)
				return opts.output(cmd).Mutation("add_story", applied, story, "story "+story.ID)
			})
		},
	}
	add.Flags().StringVar(&color, "color", models.StoryColors[0], "background colour")
	add.Flags().StringVar(&icon, "icon", models.StoryIcons[0], "icon name")

	cmd.AddCommand(add)
	return cmd
}

func NewFriendCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "List friend requests, or send and answer them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				friends := st.Friends()
				lines := make([]string, 0, len(friends))
				for _, f := range friends {
					lines = append(lines, fmt.Sprintf("%s  %s (%s) %s", f.ID, f.FromNickname, f.FromAvatarID, f.Status))
				}
				return opts.output(cmd).Success(friends, strings.Join(lines, "\n"))
			})
		},
	}

	var avatar string
	send := &cobra.Command{
		Use:   "send <nickname>",
		Short: "Send a friend request",
		Long: `Send a friend request.

A parent must have passed the gate within the last five minutes. Each pass
authorises one request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				rec := st.GateRecord()
				if !rec.PassValid(opts.clock()) {
					return WrapExitError(ExitFailure, "run gate first", gate.ErrGateRequired)
				}
				req, applied := st.SendFriendRequest(args[0], avatar)
				if applied {
					rec.PassedAt = time.Time{}
					st.SetGateRecord(rec)
				}
				return opts.output(cmd).Mutation("send_friend_request", applied, req, "request "+req.ID)
			})
		},
	}
	send.Flags().StringVar(&avatar, "avatar", "bear", "avatar id of the friend")

	accept := &cobra.Command{
		Use:   "accept <request-id>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.AcceptFriend(args[0])
				return opts.output(cmd).Mutation("accept_friend", applied, nil, "friend accepted")
			})
		},
	}

	reject := &cobra.Command{
		Use:   "reject <request-id>",
		Short: "Reject a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.RejectFriend(args[0])
				return opts.output(cmd).Mutation("reject_friend", applied, nil, "friend rejected")
			})
		},
	}

	cmd.AddCommand(send, accept, reject)
	return cmd
}

func NewNotificationsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List notifications, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				lang := st.Language()
				notifs := st.Notifications()
				lines := make([]string, 0, len(notifs)+1)
				lines = append(lines, fmt.Sprintf("%d unread", st.UnreadCount()))
				for _, n := range notifs {
					mark := "*"
					if n.Read {
						mark = " "
					}
					lines = append(lines, fmt.Sprintf("%s %s  %s: %s", mark, n.ID, n.Title(lang), n.Message(lang)))
				}
				return opts.output(cmd).Success(notifs, strings.Join(lines, "\n"))
			})
		},
	}

	read := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.MarkNotificationRead(args[0])
				return opts.output(cmd).Mutation("mark_notification_read", applied, st.UnreadCount(),
					fmt.Sprintf("%d unread", st.UnreadCount()))
			})
		},
	}

	cmd.AddCommand(read)
	return cmd
}

func NewVideoCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video",
		Short: "List the curated videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				lang := st.Language()
				videos := st.Videos()
				lines := make([]string, 0, len(videos))
				for _, v := range videos {
					lines = append(lines, fmt.Sprintf("%s  %s (%s)", v.ID, v.Title(lang), v.Duration))
				}
				return opts.output(cmd).Success(videos, strings.Join(lines, "\n"))
			})
		},
	}

	react := &cobra.Command{
		Use:   "react <video-id> <emoji>",
		Short: "Toggle a reaction on a video",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, st *store.Store) error {
				applied := st.ReactToVideo(args[0], args[1])
				return opts.output(cmd).Mutation("react_to_video", applied, nil, "reaction toggled")
			})
		},
	}

	cmd.AddCommand(react)
	return cmd
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tentkids/internal/i18n"
	"tentkids/internal/models"
)

// CatalogView lists the fixed choices the store accepts.
type CatalogView struct {
	Avatars      []models.Avatar    `json:"avatars"`
	TentColors   []models.TentColor `json:"tentColors"`
	SafeComments map[string]string  `json:"safeComments"`
	Reactions    []string           `json:"reactions"`
	StoryColors  []string           `json:"storyColors"`
	StoryIcons   []string           `json:"storyIcons"`
}

func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List avatars, tent colours, safe comments and reactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, ok := i18n.Match(lang)
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unsupported language %q", lang))
			}
			table, err := i18n.Load()
			if err != nil {
				return err
			}

			v := CatalogView{
				Avatars:      models.SelectableAvatars(""),
				TentColors:   models.TentColors,
				SafeComments: make(map[string]string, len(models.SafeCommentKeys)),
				Reactions:    models.ReactionNames,
				StoryColors:  models.StoryColors,
				StoryIcons:   models.StoryIcons,
			}
			for _, k := range models.SafeCommentKeys {
				v.SafeComments[k] = table.Lookup(l, k)
			}
			return opts.output(cmd).Success(v, formatCatalog(v, l))
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "language for labels")
	return cmd
}

func formatCatalog(v CatalogView, lang models.Language) string {
	var b strings.Builder
	b.WriteString("avatars:\n")
	for _, a := range v.Avatars {
		name := a.NameEn
		if lang == models.LanguageArabic {
			name = a.NameAr
		}
		fmt.Fprintf(&b, "  %-10s %s (%s)\n", a.ID, name, a.Category)
	}
	b.WriteString("tent colours:\n")
	for _, c := range v.TentColors {
		fmt.Fprintf(&b, "  %-10s %s\n", c.ID, c.Color)
	}
	b.WriteString("safe comments:\n")
	for _, k := range models.SafeCommentKeys {
		fmt.Fprintf(&b, "  %-13s %s\n", k, v.SafeComments[k])
	}
	fmt.Fprintf(&b, "reactions:    %s\n", strings.Join(v.Reactions, ", "))
	fmt.Fprintf(&b, "story icons:  %s", strings.Join(v.StoryIcons, ", "))
	return b.String()
}

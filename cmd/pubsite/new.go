package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/eringen/pubsite/scaffold"
)

var newAuthor string

var newCmd = &cobra.Command{
	Use:   "new <directory>",
	Short: "Create a new pubsite project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		name := filepath.Base(dir)
		data := scaffold.Data{
			ProjectName: name,
			SiteName:    toTitle(name),
			Author:      newAuthor,
			Date:        time.Now().Format("2006-01-02"),
		}
		if data.Author == "" {
			data.Author = data.SiteName
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Creating new pubsite project: %s\n\n", dir)
		created, err := scaffold.Generate(dir, data)
		for _, f := range created {
			fmt.Fprintf(out, "  created %s\n", filepath.Join(dir, f))
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Done! Next steps:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  cd %s\n", dir)
		fmt.Fprintln(out, "  pubsite serve --watch")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Set PUBSITE_PREVIEW_PASSWORD and PUBSITE_PREVIEW_SESSION_SECRET in .env to preview drafts.")
		return nil
	},
}

func init() {
	newCmd.Flags().StringVar(&newAuthor, "author", "", "Author display name")
}

// toTitle converts a hyphenated or lowercase name to a title-case string.
// e.g. "my-blog" -> "My Blog", "myblog" -> "Myblog"
func toTitle(s string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(s))
}

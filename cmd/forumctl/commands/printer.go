package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"campuscare/internal/models"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func enableColor() {
	color.NoColor = false
}

func printSuccess(w io.Writer, format string, a ...any) {
	_, _ = green.Fprintf(w, "✓ "+format+"\n", a...)
}

func printWarning(w io.Writer, format string, a ...any) {
	_, _ = yellow.Fprintf(w, "! "+format+"\n", a...)
}

func printError(w io.Writer, err error) {
	_, _ = red.Fprintf(w, "Error: %v\n", err)
	if code := models.ErrorCode(err); code != "" {
		_, _ = fmt.Fprintf(w, "code: %s\n", code)
	}
}

func printPosts(w io.Writer, posts []*models.Post) {
	if len(posts) == 0 {
		printWarning(w, "no posts")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = cyan.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tLIKES\tFLAGS\tAUTHOR\tTITLE")
	for _, p := range posts {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			p.ID, p.Status, p.Category, p.LikeCount, p.FlagCount, p.AuthorName, truncate(p.Title, 48))
	}
	_ = tw.Flush()
}

func printFlags(w io.Writer, flags []*models.Flag) {
	if len(flags) == 0 {
		printWarning(w, "no reports")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = cyan.Fprintln(tw, "ID\tUSER\tREPORTED\tREASON")
	for _, f := range flags {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", f.ID, f.UserID, f.CreatedAt.Format("2006-01-02 15:04"), truncate(f.Reason, 60))
	}
	_ = tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

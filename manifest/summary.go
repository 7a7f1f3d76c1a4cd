package manifest

import (
	"fmt"
	"io"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/gookit/color"

	"go.polydawn.net/toolchain-discovery/api"
)

const (
	SummaryTitle  = "Toolchain Artifacts Summary"
	summaryURLMax = 60
)

// Cut `url` to 60 characters (runes, not bytes) plus "..." if it's any longer.
func Truncate(url string) string {
	if utf8.RuneCountInString(url) <= summaryURLMax {
		return url
	}
	return string([]rune(url)[:summaryURLMax]) + "..."
}

// Print a table of platform, repository and (truncated) URL per artifact.
func RenderSummary(w io.Writer, artifacts []api.Artifact) error {
	if _, err := fmt.Fprintf(w, "\n%s\n\n", color.Bold.Sprint(SummaryTitle)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n",
		color.Bold.Sprint("Platform"),
		color.Bold.Sprint("Repository"),
		color.Bold.Sprint("URL"),
	)
	for _, a := range artifacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			color.Cyan.Sprint(a.Platform),
			color.Green.Sprint(a.RepositoryName),
			color.Blue.Sprint(Truncate(a.URL)),
		)
	}
	return tw.Flush()
}

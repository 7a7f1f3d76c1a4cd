package scan

import (
	"strings"

	"github.com/bazelbuild/buildtools/build"
)

// Rule kind whose download attributes we know how to read.
// Query output not mentioning it is ignored outright.
const HTTPArchiveMarker = "http_archive"

/*
	Download attributes of an archive repository rule.

	Only the single-valued "url" attribute is read.  A "urls" list is
	recognized but left alone, so a rule that only has "urls" comes back
	without a URL (and gets dropped by the caller).
*/
type ArchiveFields struct {
	URL         string
	SHA256      string
	StripPrefix *string
}

func (af ArchiveFields) Complete() bool {
	return af.URL != "" && af.SHA256 != ""
}

// Pulls ArchiveFields out of `bazel query --output=build` text.
type ArchiveExtractor interface {
	Extract(definition string) (ArchiveFields, error)
}

var (
	_ ArchiveExtractor = LineExtractor{}
	_ ArchiveExtractor = SyntaxExtractor{}
)

/*
	Reads attributes line by line, looking for lines (leading whitespace
	aside) of the form `"url", "VALUE"...`: the attribute name quoted,
	followed by its quoted value.  The value is the 4th '"'-separated field.
	When an attribute appears more than once, the last one wins.

	Never returns an error; anything unrecognized is skipped.
*/
type LineExtractor struct{}

func (LineExtractor) Extract(definition string) (ArchiveFields, error) {
	var af ArchiveFields
	for _, line := range strings.Split(definition, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, `"url"`):
			if v, ok := quotedValue(line); ok {
				af.URL = v
			}
		case strings.HasPrefix(line, `"urls"`):
			// Lists of mirrors aren't handled.
		case strings.HasPrefix(line, `"sha256"`):
			if v, ok := quotedValue(line); ok {
				af.SHA256 = v
			}
		case strings.HasPrefix(line, `"strip_prefix"`):
			if v, ok := quotedValue(line); ok {
				af.StripPrefix = &v
			}
		}
	}
	return af, nil
}

func quotedValue(line string) (string, bool) {
	parts := strings.Split(line, `"`)
	if len(parts) < 4 {
		return "", false
	}
	return parts[3], true
}

/*
	Parses the definition as BUILD syntax and reads the string attributes
	of the first http_archive rule that declares a url.

	Returns an error only if the text doesn't parse at all.
	An empty strip_prefix is treated as absent.
*/
type SyntaxExtractor struct{}

func (SyntaxExtractor) Extract(definition string) (ArchiveFields, error) {
	f, err := build.ParseBuild("query-output", []byte(definition))
	if err != nil {
		return ArchiveFields{}, err
	}
	for _, rule := range f.Rules(HTTPArchiveMarker) {
		af := ArchiveFields{
			URL:    rule.AttrString("url"),
			SHA256: rule.AttrString("sha256"),
		}
		if af.URL == "" {
			continue
		}
		if sp := rule.AttrString("strip_prefix"); sp != "" {
			af.StripPrefix = &sp
		}
		return af, nil
	}
	return ArchiveFields{}, nil
}

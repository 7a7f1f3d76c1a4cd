package workspace

import (
	"strings"

	"github.com/bazelbuild/buildtools/build"
)

/*
	Keep the platform labels worth analyzing: those whose text mentions one
	of `tokens` (case-insensitively), in their original order, at most `max`.
*/
func FilterPlatforms(labels []string, tokens []string, max int) []string {
	var keep []string
	for _, l := range labels {
		if len(keep) >= max {
			break
		}
		lower := strings.ToLower(l)
		for _, tok := range tokens {
			if strings.Contains(lower, strings.ToLower(tok)) {
				keep = append(keep, l)
				break
			}
		}
	}
	return keep
}

// A platform we may declare in a workspace that has none of its own.
type SyntheticPlatform struct {
	Name   string
	OS     string // value under @platforms//os
	CPU    string // value under @platforms//cpu
	Active bool   // whether runs actually analyze it
}

func (p SyntheticPlatform) Label() string {
	return "//:" + p.Name
}

/*
	Every platform written into the workspace when it declares none.
	All four are declared; only the active ones are analyzed
	(each one costs a full build with an empty repository cache).
*/
var SyntheticPlatforms = []SyntheticPlatform{
	{Name: "linux_amd64", OS: "linux", CPU: "x86_64"},
	{Name: "linux_arm64", OS: "linux", CPU: "arm64"},
	{Name: "darwin_arm64", OS: "macos", CPU: "arm64", Active: true},
	{Name: "windows_amd64", OS: "windows", CPU: "x86_64"},
}

// Labels of the synthetic platforms that runs analyze.
func ActivePlatforms() []string {
	var labels []string
	for _, p := range SyntheticPlatforms {
		if p.Active {
			labels = append(labels, p.Label())
		}
	}
	return labels
}

const platformBlockComment = "# Temporary platform definitions for toolchain discovery"

/*
	Render `platform(...)` declarations for each of `platforms`, in BUILD
	syntax, headed by a comment line saying they're temporary.
*/
func RenderPlatformBlock(platforms []SyntheticPlatform) []byte {
	f := &build.File{Type: build.TypeBuild}
	for i, p := range platforms {
		call := &build.CallExpr{
			X: &build.Ident{Name: "platform"},
			List: []build.Expr{
				attr("name", &build.StringExpr{Value: p.Name}),
				attr("constraint_values", &build.ListExpr{
					List: []build.Expr{
						&build.StringExpr{Value: "@platforms//os:" + p.OS},
						&build.StringExpr{Value: "@platforms//cpu:" + p.CPU},
					},
					ForceMultiLine: true,
				}),
			},
			ForceMultiLine: true,
		}
		if i == 0 {
			call.Comments.Before = []build.Comment{{Token: platformBlockComment}}
		}
		f.Stmt = append(f.Stmt, call)
	}
	return build.FormatWithoutRewriting(f)
}

func attr(key string, value build.Expr) *build.AssignExpr {
	return &build.AssignExpr{
		LHS: &build.Ident{Name: key},
		Op:  "=",
		RHS: value,
	}
}

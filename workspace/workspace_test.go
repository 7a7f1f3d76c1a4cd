package workspace

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bazelbuild/buildtools/build"
	. "github.com/smartystreets/goconvey/convey"

	"go.polydawn.net/toolchain-discovery/lib/testutil"
)

func TestFilterPlatforms(t *testing.T) {
	tokens := []string{"linux", "darwin", "windows", "amd64", "arm64", "x86_64"}

	Convey("Filtering discovered platforms", t, func() {
		Convey("Only labels mentioning a known os or arch survive, in order", func() {
			So(FilterPlatforms([]string{
				"//platforms:host",
				"//platforms:Linux_X86_64",
				"//platforms:wasm32",
				"//:darwin_arm64",
			}, tokens, 4), ShouldResemble, []string{
				"//platforms:Linux_X86_64",
				"//:darwin_arm64",
			})
		})

		Convey("The result is capped", func() {
			So(FilterPlatforms([]string{
				"//:linux_a", "//:linux_b", "//:linux_c", "//:linux_d", "//:linux_e",
			}, tokens, 4), ShouldResemble, []string{
				"//:linux_a", "//:linux_b", "//:linux_c", "//:linux_d",
			})
		})

		Convey("Nothing in, nothing out", func() {
			So(FilterPlatforms(nil, tokens, 4), ShouldBeEmpty)
			So(FilterPlatforms([]string{"//:host"}, tokens, 4), ShouldBeEmpty)
		})
	})
}

func TestSyntheticPlatforms(t *testing.T) {
	Convey("Synthetic platforms", t, func() {
		Convey("Only darwin_arm64 is active", func() {
			So(ActivePlatforms(), ShouldResemble, []string{"//:darwin_arm64"})
		})

		Convey("The rendered block declares all four as valid BUILD syntax", func() {
			block := RenderPlatformBlock(SyntheticPlatforms)
			So(string(block), ShouldStartWith, "# Temporary platform definitions for toolchain discovery\n")

			f, err := build.ParseBuild("BUILD.bazel", block)
			So(err, ShouldBeNil)
			rules := f.Rules("platform")
			So(rules, ShouldHaveLength, 4)
			So(rules[2].Name(), ShouldEqual, "darwin_arm64")
			So(rules[2].AttrStrings("constraint_values"), ShouldResemble, []string{
				"@platforms//os:macos",
				"@platforms//cpu:arm64",
			})
			So(rules[3].Name(), ShouldEqual, "windows_amd64")
			So(rules[3].AttrStrings("constraint_values"), ShouldResemble, []string{
				"@platforms//os:windows",
				"@platforms//cpu:x86_64",
			})
		})
	})
}

func TestMutation(t *testing.T) {
	Convey("Synthesizing platforms into a workspace", t, testutil.WithTmpdir(func(c C, ws string) {
		Convey("With no build file, BUILD.bazel is created and later removed", func() {
			m, err := Synthesize(ws)
			So(err, ShouldBeNil)
			So(m.Existed(), ShouldBeFalse)
			So(m.Path, ShouldEqual, filepath.Join(ws, "BUILD.bazel"))
			So(m.Path, testutil.ShouldBeFile)
			body, _ := ioutil.ReadFile(m.Path)
			So(strings.Count(string(body), "platform("), ShouldEqual, 4)

			So(m.Restore(), ShouldBeNil)
			So(m.Path, testutil.ShouldBeNotFile)

			Convey("Restoring twice is harmless", func() {
				So(m.Restore(), ShouldBeNil)
				So(m.Path, testutil.ShouldBeNotFile)
			})
		})

		Convey("An existing BUILD.bazel is appended to and restored byte for byte", func() {
			original := "load(\"@rules_cc//cc:defs.bzl\", \"cc_library\")\n\ncc_library(name = \"x\")\n"
			pth := filepath.Join(ws, "BUILD.bazel")
			So(ioutil.WriteFile(pth, []byte(original), 0640), ShouldBeNil)

			m, err := Synthesize(ws)
			So(err, ShouldBeNil)
			So(m.Existed(), ShouldBeTrue)
			body, _ := ioutil.ReadFile(pth)
			So(string(body), ShouldStartWith, original+"\n\n# Temporary platform definitions")

			So(m.Restore(), ShouldBeNil)
			So(pth, testutil.ShouldHaveContent, original)
			So(pth, testutil.ShouldBeFile, os.FileMode(0640))
		})

		Convey("A plain BUILD file is used when there's no BUILD.bazel", func() {
			pth := filepath.Join(ws, "BUILD")
			So(ioutil.WriteFile(pth, []byte("# hi\n"), 0644), ShouldBeNil)

			m, err := Synthesize(ws)
			So(err, ShouldBeNil)
			So(m.Path, ShouldEqual, pth)
			So(filepath.Join(ws, "BUILD.bazel"), testutil.ShouldBeNotFile)

			So(m.Restore(), ShouldBeNil)
			So(pth, testutil.ShouldHaveContent, "# hi\n")
		})

		Convey("BUILD.bazel is preferred when both exist", func() {
			So(ioutil.WriteFile(filepath.Join(ws, "BUILD"), []byte("a\n"), 0644), ShouldBeNil)
			So(ioutil.WriteFile(filepath.Join(ws, "BUILD.bazel"), []byte("b\n"), 0644), ShouldBeNil)
			So(ChooseBuildFile(ws), ShouldEqual, filepath.Join(ws, "BUILD.bazel"))
		})

		Convey("An existing but empty build file is restored to empty, not removed", func() {
			pth := filepath.Join(ws, "BUILD.bazel")
			So(ioutil.WriteFile(pth, nil, 0644), ShouldBeNil)

			m, err := Synthesize(ws)
			So(err, ShouldBeNil)
			body, _ := ioutil.ReadFile(pth)
			So(string(body), ShouldStartWith, "\n# Temporary platform definitions")

			So(m.Restore(), ShouldBeNil)
			So(pth, testutil.ShouldHaveContent, "")
		})

		Convey("A nil mutation restores to nothing", func() {
			var m *Mutation
			So(m.Restore(), ShouldBeNil)
		})
	}))
}

package api

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/warpfork/go-errcat"
)

func TestExitCodeForError(t *testing.T) {
	Convey("Exit codes follow error categories", t, func() {
		So(ExitCodeForError(nil), ShouldEqual, EXIT_SUCCESS)
		So(ExitCodeForError(errcat.Errorf(ErrUsage, "nope")), ShouldEqual, EXIT_BADARGS)
		So(ExitCodeForError(errcat.Errorf(ErrClean, "nope")), ShouldEqual, EXIT_CLEAN)
		So(ExitCodeForError(errcat.Errorf(ErrManifestIO, "nope")), ShouldEqual, EXIT_MANIFEST_IO)
		So(ExitCodeForError(errcat.Errorf(ErrWorkspaceIO, "nope")), ShouldEqual, EXIT_WORKSPACE_IO)
		So(ExitCodeForError(errcat.Errorf(ErrToolMissing, "nope")), ShouldEqual, EXIT_TOOL_MISSING)

		Convey("Uncategorized errors are still nonzero", func() {
			So(ExitCodeForError(fmt.Errorf("plain")), ShouldEqual, EXIT_UNKNOWN)
		})
	})
}

func TestArtifactValid(t *testing.T) {
	Convey("Artifacts need both a url and a checksum", t, func() {
		So(Artifact{URL: "https://x", SHA256: "abc"}.Valid(), ShouldBeTrue)
		So(Artifact{URL: "https://x"}.Valid(), ShouldBeFalse)
		So(Artifact{SHA256: "abc"}.Valid(), ShouldBeFalse)
	})
}

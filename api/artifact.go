package api

/*
	This file is all the serializable types produced by a discovery run:
	the artifacts we found and the manifest that groups them.
*/

import (
	"github.com/polydawn/refmt/obj/atlas"
)

// Placeholder for Artifact.ToolchainType.  Nothing inspects toolchain
// rules deeply enough to classify them, so every artifact carries this.
const ToolchainTypeUnknown = "unknown"

type (
	/*
		One toolchain download that bazel selected for a platform.

		URL and SHA256 are both required; anything missing either of them
		is not an Artifact, and should be dropped before it gets this far
		(see `Valid`).
	*/
	Artifact struct {
		URL            string
		SHA256         string  // hex digest of the archive, as declared by the repository rule.
		Platform       string  // platform label the artifact was selected under, e.g. "//:darwin_arm64".
		ToolchainType  string  // always ToolchainTypeUnknown for now.
		RepositoryName string  // bazel's name for the external repository, sans '@'.
		StripPrefix    *string // nil when the rule didn't declare one.
	}

	/*
		Artifacts grouped by the platform they were discovered under.

		Order within a group is the order of discovery;
		duplicates are kept if the scan reported them more than once.
	*/
	Manifest map[string][]Artifact
)

func (a Artifact) Valid() bool {
	return a.URL != "" && a.SHA256 != ""
}

var Artifact_AtlasEntry = atlas.BuildEntry(Artifact{}).StructMap().
	AddField("URL", atlas.StructMapEntry{SerialName: "url"}).
	AddField("SHA256", atlas.StructMapEntry{SerialName: "sha256"}).
	AddField("Platform", atlas.StructMapEntry{SerialName: "platform"}).
	AddField("ToolchainType", atlas.StructMapEntry{SerialName: "toolchain_type"}).
	AddField("RepositoryName", atlas.StructMapEntry{SerialName: "repository_name"}).
	AddField("StripPrefix", atlas.StructMapEntry{SerialName: "strip_prefix"}).
	Complete()

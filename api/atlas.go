package api

import (
	"github.com/polydawn/refmt/obj/atlas"
)

// Atlas for everything that goes into a manifest file.
// Map keys (platform labels) are emitted in sorted order so that
// repeated runs over the same workspace produce identical files.
var ManifestAtlas = atlas.MustBuild(
	Artifact_AtlasEntry,
).WithMapMorphism(atlas.MapMorphism{KeySortMode: atlas.KeySortMode_Strings})

package manifest

import (
	"bytes"
	"io/ioutil"

	"github.com/polydawn/refmt/json"
	. "github.com/warpfork/go-errcat"

	"go.polydawn.net/toolchain-discovery/api"
)

var jsonPrettyOptions = json.EncodeOptions{
	Line:   []byte{'\n'},
	Indent: []byte{' ', ' '},
}

/*
	Group artifacts by the platform they were discovered under.

	Order within each platform follows the order of `artifacts`.
	The result is never nil, so an empty run still serializes as `{}`.
*/
func Group(artifacts []api.Artifact) api.Manifest {
	m := api.Manifest{}
	for _, a := range artifacts {
		m[a.Platform] = append(m[a.Platform], a)
	}
	return m
}

// Serialize the manifest as pretty JSON, keys sorted, with a trailing newline.
func Marshal(m api.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewMarshallerAtlased(&buf, jsonPrettyOptions, api.ManifestAtlas).Marshal(m); err != nil {
		return nil, Errorf(api.ErrManifestIO, "cannot serialize manifest: %s", err)
	}
	return buf.Bytes(), nil
}

// Write the manifest to `pth`, replacing whatever was there.
func Write(pth string, m api.Manifest) error {
	body, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := ioutil.WriteFile(pth, body, 0644); err != nil {
		return Errorf(api.ErrManifestIO, "cannot write manifest %q: %s", pth, err)
	}
	return nil
}

// Read a manifest back from `pth`.
func Read(pth string) (api.Manifest, error) {
	body, err := ioutil.ReadFile(pth)
	if err != nil {
		return nil, Errorf(api.ErrManifestIO, "cannot read manifest %q: %s", pth, err)
	}
	m := api.Manifest{}
	if err := json.UnmarshalAtlased(body, &m, api.ManifestAtlas); err != nil {
		return nil, Errorf(api.ErrManifestIO, "cannot parse manifest %q: %s", pth, err)
	}
	return m, nil
}

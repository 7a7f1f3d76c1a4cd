package testutil

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/smartystreets/goconvey/convey"
)

/*
	Decorates a goconvey test with a tmpdir, and chdirs into it.
	Both the chdir and the dir itself are undone when the convey scope resets.

	Most tests here use the tmpdir as a throwaway bazel workspace.

	See also https://github.com/smartystreets/goconvey/wiki/Decorating-tests-to-provide-common-logic
*/
func WithTmpdir(fn interface{}) func(c convey.C) {
	return func(c convey.C) {
		retreat, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		convey.Reset(func() {
			os.Chdir(retreat)
		})

		tmpBase := filepath.Join(os.TempDir(), "toolchain-discovery-test")
		err = os.MkdirAll(tmpBase, os.FileMode(0755)|os.ModeSticky)
		if err != nil {
			panic(err)
		}
		tmpdir, err := ioutil.TempDir(tmpBase, "")
		if err != nil {
			panic(err)
		}
		tmpdir, err = filepath.Abs(tmpdir)
		if err != nil {
			panic(err)
		}
		convey.Reset(func() {
			os.RemoveAll(tmpdir)
		})
		err = os.Chdir(tmpdir)
		if err != nil {
			panic(err)
		}

		switch fn := fn.(type) {
		case func():
			fn()
		case func(c convey.C):
			fn(c)
		case func(c convey.C, dir string):
			fn(c, tmpdir)
		}
	}
}

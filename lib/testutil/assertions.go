package testutil

import (
	"fmt"
	"io/ioutil"
	"os"
)

/*
	'actual' should be path; 'expected' may be empty (in which case it checks
	that anything with an inode exists) or a filemode (all bits will be
	asserted against -- permissions as well as the `os.ModeType` range).
*/
func ShouldBeFile(actual interface{}, expected ...interface{}) string {
	filename, ok := actual.(string)
	if !ok {
		return "You must provide a filename as the first argument to this assertion."
	}

	info, err := os.Stat(filename)
	if err != nil {
		// includes if os.IsNotExist(err)
		return err.Error()
	}

	switch len(expected) {
	case 0:
		return "" // not picky about mode?  okay, you pass already.
	case 1:
		mode, ok := expected[0].(os.FileMode)
		if !ok {
			return "You must provide a FileMode as the second argument to this assertion, if any."
		}
		if info.Mode() != mode {
			return fmt.Sprintf("Expected file to have mode %v but it had %v instead!", mode, info.Mode())
		}
		return ""
	default:
		return "You must provide zero or one parameters as expectations to this assertion."
	}
}

/*
	'actual' should be path.  Expects no file (or dir) at path.
*/
func ShouldBeNotFile(actual interface{}, expected ...interface{}) string {
	filename, ok := actual.(string)
	if !ok {
		return "You must provide a filename as the first argument to this assertion."
	}

	switch len(expected) {
	case 0:
		break
	default:
		return "You must provide zero parameters as expectations to this assertion."
	}

	info, err := os.Stat(filename)
	if err == nil {
		modeType := info.Mode() & os.ModeType
		return fmt.Sprintf("Expected file not to exist but it had mode %v instead!", modeType)
	}
	if os.IsNotExist(err) {
		return ""
	}
	return err.Error()
}

/*
	'actual' should be path; 'expected' should be a string.
	Checks the file exists and its body is exactly that string.
*/
func ShouldHaveContent(actual interface{}, expected ...interface{}) string {
	filename, ok := actual.(string)
	if !ok {
		return "You must provide a filename as the first argument to this assertion."
	}
	if len(expected) != 1 {
		return "You must provide exactly one string as the expectation parameter to this assertion."
	}
	want, ok := expected[0].(string)
	if !ok {
		return "You must provide exactly one string as the expectation parameter to this assertion."
	}

	body, err := ioutil.ReadFile(filename)
	if err != nil {
		return err.Error()
	}
	if string(body) != want {
		return fmt.Sprintf("Expected file %q to contain:\n%q\nbut it contained:\n%q", filename, want, string(body))
	}
	return ""
}

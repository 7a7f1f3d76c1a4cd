package testutil

import (
	"io"

	"github.com/inconshreveable/log15"
	"github.com/smartystreets/goconvey/convey"
)

// Returns a logger which prints everything, debug included, into the
// goconvey report for the current scope.
func TestLogger(c convey.C) log15.Logger {
	log := log15.New()
	log.SetHandler(log15.LvlFilterHandler(log15.LvlDebug,
		log15.StreamHandler(conveyWriter{c}, log15.LogfmtFormat()),
	))
	return log
}

// Returns a logger which drops everything.  For tests outside a convey scope.
func QuietLogger() log15.Logger {
	log := log15.New()
	log.SetHandler(log15.DiscardHandler())
	return log
}

var _ io.Writer = conveyWriter{}

// Wraps a goconvey context into an `io.Writer` so logs can be shoveled at it.
type conveyWriter struct {
	convey convey.C
}

func (lw conveyWriter) Write(msg []byte) (int, error) {
	return lw.convey.Print(string(msg))
}

package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// log is the ambient package-level logger every sub-command reports
// through, modeled on arvados-lightning's cmd.go package-level logrus
// setup: a plain TextFormatter with timestamps suppressed when stderr
// isn't a terminal (so piped/logged output doesn't carry a noisy
// timestamp column).
var log = logrus.StandardLogger()

func init() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}
}

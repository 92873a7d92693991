package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
)

const (
	exitFailure   = 1
	exitCancelled = 130
)

var exitFunc = os.Exit

func main() {
	app := newAppContext()
	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, evaluation.ErrRunCancelled) {
		return exitCancelled
	}
	return exitFailure
}

package logx

import (
	"fmt"
	"io"
	"log"
	"os"
)

// New returns a component logger writing timestamp, level, name, and
// message to stdout.
func New(level, name string) *log.Logger {
	return log.New(os.Stdout, fmt.Sprintf("%s | %s | ", level, name), log.LstdFlags|log.Lmsgprefix)
}

// NewError returns an error-level component logger writing to stderr.
func NewError(name string) *log.Logger {
	return log.New(os.Stderr, fmt.Sprintf("ERROR | %s | ", name), log.LstdFlags|log.Lmsgprefix)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

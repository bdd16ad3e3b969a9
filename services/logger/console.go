package logsvc

import (
	"log"

	"github.com/trezcool/darasa/core"
)

// ConsoleLogger logs to a standard library logger; the default in DEV.
type ConsoleLogger struct {
	std     *log.Logger
	verbose bool
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{std: std, verbose: verbose}
}

func (l ConsoleLogger) print(msg string, args []interface{}) {
	l.std.Println(msg)
	if l.verbose {
		for _, arg := range args {
			l.std.Printf("%+v\n", arg)
		}
	}
}

func (l ConsoleLogger) Debug(msg string, args ...interface{}) {
	if l.verbose {
		l.print(msg, args)
	}
}

func (l ConsoleLogger) Info(msg string, args ...interface{})  { l.print(msg, args) }
func (l ConsoleLogger) Warn(msg string, args ...interface{})  { l.print(msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{}) { l.print(msg, args) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	l.print(msg, args)
	l.std.Fatal(msg)
}

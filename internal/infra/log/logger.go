package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger создаёт настроенный zerolog. Если file не nil, в него дублируется
// человекочитаемая копия журнала, которую читает /logs.
func NewLogger(appEnv string, file io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	var out io.Writer = os.Stdout
	if file != nil {
		out = zerolog.MultiLevelWriter(os.Stdout, zerolog.ConsoleWriter{
			Out:        file,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		})
	}
	return zerolog.New(out).With().Timestamp().Logger().Level(level)
}

// OpenFile открывает файл журнала на дозапись.
func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

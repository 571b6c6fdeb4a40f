package logging

import (
	"path/filepath"

	"github.com/phuslu/log"

	"github.com/lmonteir/handyspeech/internal/config"
)

// Setup configures the process-wide logger: readable console output on
// stderr plus a rotating file under the app's logs directory. Console
// output stays quiet unless verbose is set; the file always gets debug.
func Setup(verbose bool) {
	consoleLevel := log.WarnLevel
	if verbose {
		consoleLevel = log.DebugLevel
	}

	log.DefaultLogger = log.Logger{
		Level:      log.DebugLevel,
		TimeFormat: "15:04:05",
		Writer: &log.MultiEntryWriter{
			&levelWriter{
				min: consoleLevel,
				w: &log.ConsoleWriter{
					ColorOutput:    true,
					EndWithMessage: true,
				},
			},
			&log.FileWriter{
				Filename:     filepath.Join(config.LogsDir(), "handyspeech.log"),
				MaxSize:      10 * 1024 * 1024,
				MaxBackups:   3,
				EnsureFolder: true,
				LocalTime:    true,
			},
		},
	}
}

// WithRun returns a logger tagging every entry with the pipeline run ID.
func WithRun(runID string) log.Logger {
	l := log.DefaultLogger
	l.Context = log.NewContext(nil).Str("run", runID).Value()
	return l
}

// levelWriter drops entries below min, letting the console stay quieter
// than the log file.
type levelWriter struct {
	min log.Level
	w   log.Writer
}

func (lw *levelWriter) WriteEntry(e *log.Entry) (int, error) {
	if e.Level < lw.min {
		return 0, nil
	}
	return lw.w.WriteEntry(e)
}

func (lw *levelWriter) Close() error {
	if closer, ok := lw.w.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

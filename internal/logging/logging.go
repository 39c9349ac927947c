package logging

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger: JSON lines on stdout, level
// taken from LOG_LEVEL (default info).
func Setup() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
}

func parseLevel(raw string) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

package utils

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide structured logger.
func NewLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

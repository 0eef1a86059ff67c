package serial

import (
	"io"
	"log/slog"
)

// discardLogger is used by components built without a logger
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

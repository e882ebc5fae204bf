package sl

import (
	"log/slog"
)

// Err creates a slog.Attr under the "error" key. A nil error yields an empty attr, which slog drops.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

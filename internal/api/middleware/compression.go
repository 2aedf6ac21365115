package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog"
)

// CompressionConfig holds response compression settings.
type CompressionConfig struct {
	// MinSize is the smallest body, in bytes, that gets compressed.
	MinSize int
	// Level is the gzip level, 1-9.
	Level int
}

// DefaultCompressionConfig returns the defaults: 1KB minimum, level 6.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   6,
	}
}

// Compression gzips responses for clients that accept it. Invalid settings
// are logged and replaced by the gzhttp defaults.
func Compression(cfg CompressionConfig, log zerolog.Logger) func(http.Handler) http.Handler {
	wrapper, err := gzhttp.NewWrapper(
		gzhttp.MinSize(cfg.MinSize),
		gzhttp.CompressionLevel(cfg.Level),
		gzhttp.ContentTypes([]string{"application/json", "application/problem+json"}),
	)
	if err != nil {
		log.Warn().
			Err(err).
			Int("min_size", cfg.MinSize).
			Int("level", cfg.Level).
			Msg("invalid compression settings, using gzhttp defaults")
		return func(next http.Handler) http.Handler {
			return gzhttp.GzipHandler(next)
		}
	}
	return func(next http.Handler) http.Handler {
		return wrapper(next)
	}
}

package middleware

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jsamuelsen11/go-envelope-gateway/internal/platform/logging"
)

// RedactHeaders turns headers into log attributes sorted by name. Credential
// headers (see logging.IsSensitiveHeader) become logging.Redacted; repeated
// values are joined with a comma.
func RedactHeaders(headers http.Header) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(headers))
	for _, key := range slices.Sorted(maps.Keys(headers)) {
		if logging.IsSensitiveHeader(key) {
			attrs = append(attrs, slog.String(key, logging.Redacted))
			continue
		}
		attrs = append(attrs, slog.String(key, strings.Join(headers[key], ",")))
	}
	return attrs
}

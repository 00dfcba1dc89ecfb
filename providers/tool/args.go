package tool

import (
	"log/slog"
	"strings"

	"github.com/leofalp/cascade/internal/utils"
)

// ParseArguments decodes the JSON argument text a model produced for a tool
// call. Malformed JSON is repaired first; anything still unusable (or not an
// object) becomes an empty map so the executor's validation reports the
// missing fields back to the model.
func ParseArguments(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}
	}

	args, err := utils.DecodeLenient[map[string]any](raw)
	if err != nil || args == nil {
		slog.Debug("discarding unparseable tool arguments", "raw", raw, "error", err)
		return map[string]any{}
	}
	return args
}

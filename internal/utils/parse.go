package utils

import (
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeLenient unmarshals content into T. When strict decoding fails the
// text is run through jsonrepair (single quotes, trailing commas, unquoted
// keys, truncated objects) and decoded again.
//
//	args, err := DecodeLenient[map[string]any](`{path: 'notes.txt',}`)
func DecodeLenient[T any](content string) (T, error) {
	var result T

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("unmarshal as %T: %w (repair failed: %v)", result, err, repairErr)
	}

	var retry T
	if err := json.Unmarshal([]byte(repaired), &retry); err != nil {
		return result, fmt.Errorf("unmarshal repaired JSON as %T: %w", result, err)
	}
	return retry, nil
}

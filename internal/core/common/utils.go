package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSON cleans and unmarshals a JSON object from an LLM response.
// It tolerates surrounding markdown fences or prose.
func ParseJSON[T any](response string) (T, error) {
	return parseBetween[T](response, '{', '}')
}

// ParseJSONArray is ParseJSON for responses whose payload is a JSON array.
func ParseJSONArray[T any](response string) (T, error) {
	return parseBetween[T](response, '[', ']')
}

func parseBetween[T any](response string, open, close byte) (T, error) {
	var zero T

	start := strings.IndexByte(response, open)
	if start == -1 {
		return zero, fmt.Errorf("no JSON found in response (missing '%c')", open)
	}
	end := strings.LastIndexByte(response, close)
	if end < start {
		return zero, fmt.Errorf("no JSON found in response (missing '%c')", close)
	}

	jsonStr := response[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}
	return result, nil
}

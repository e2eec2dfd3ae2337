package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ParseFloatParam retrieves a float64 value from the provided URL query parameters.
// If the key is not present or the value is invalid, it returns 0 and updates the fieldErrors map.
func ParseFloatParam(params url.Values, key string, fieldErrors map[string][]string) (float64, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return 0, fieldErrors
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	}
	return f, fieldErrors
}

// RequireParams records a field error for every listed key that is absent
// from the provided URL query parameters.
func RequireParams(params url.Values, fieldErrors map[string][]string, keys ...string) map[string][]string {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	for _, key := range keys {
		if params.Get(key) == "" {
			fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Missing required field %q.", key))
		}
	}
	return fieldErrors
}

// ParseIntParam retrieves an int value from the provided URL query parameters,
// returning def when the key is absent.
func ParseIntParam(params url.Values, key string, def int, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return def, fieldErrors
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return def, fieldErrors
	}
	return n, fieldErrors
}

// ParseBoolParam retrieves a boolean value from the provided URL query
// parameters, returning def when the key is absent.
func ParseBoolParam(params url.Values, key string, def bool, fieldErrors map[string][]string) (bool, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return def, fieldErrors
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return def, fieldErrors
	}
	return b, fieldErrors
}

// ParseTimeParam parses a time query parameter. It supports epoch timestamps
// in milliseconds and RFC 3339 strings, defaulting to now when absent.
func ParseTimeParam(params url.Values, key string, now time.Time, fieldErrors map[string][]string) (time.Time, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := params.Get(key)
	if val == "" {
		return now, fieldErrors
	}

	if epochMs, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.UnixMilli(epochMs), fieldErrors
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, fieldErrors
	}

	fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
	return now, fieldErrors
}

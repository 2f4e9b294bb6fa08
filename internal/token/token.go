package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/kglearn/frontgate/internal/user"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrMissing is returned for empty tokens
	ErrMissing = errors.New("no token present")

	// ErrMalformed is returned for tokens that could not be split into three segments or whose payload could not be
	// decoded
	ErrMalformed = errors.New("malformed token")

	// ErrNotObject is returned by Claims for payloads that decode to JSON values other than objects
	ErrNotObject = errors.New("token payload is not a JSON object")
)

const claimExpiry = "exp"

// Claims decodes the payload segment of a three-part token without verifying its signature
func Claims(raw string) (jwt.MapClaims, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return jwt.MapClaims(obj), nil
}

// Expired reports whether a token is expired at the given point in time: now (in milliseconds) >= exp * 1000.
// Missing and malformed tokens count as expired. Tokens without a truthy expiry claim, payloads that are not objects
// and expiry claims that do not coerce to a number never expire.
func Expired(raw string, now time.Time) bool {
	exp, ok, err := expiryMillis(raw)
	if err != nil {
		return true
	}
	if !ok {
		return false
	}
	return float64(now.UnixMilli()) >= exp
}

// Expiry returns the point in time a token expires at.
// ok is false if the token never expires or its expiry lies outside the representable time range.
func Expiry(raw string) (exp time.Time, ok bool, err error) {
	ms, ok, err := expiryMillis(raw)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	if math.IsNaN(ms) || ms < math.MinInt64 || ms >= math.MaxInt64 {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(int64(math.Ceil(ms))), true, nil
}

// ExpiryMillis returns the expiry of a token in milliseconds since the epoch as used by the server-side storage
// drivers to sweep expired clients: the token counts as expired once the clock reaches the returned value.
// Tokens that never expire yield 0, missing, malformed and always expired ones yield 1 so they are swept on the next
// run.
func ExpiryMillis(raw string) int64 {
	ms, ok, err := expiryMillis(raw)
	if err != nil {
		return 1
	}
	if !ok || math.IsNaN(ms) || ms >= math.MaxInt64 {
		return 0
	}
	if ms < 1 {
		return 1
	}
	return int64(math.Ceil(ms))
}

// expiryMillis extracts exp * 1000 out of a token; ok is false if the payload carries no truthy expiry claim
func expiryMillis(raw string) (float64, bool, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return 0, false, err
	}
	claims, isObject := payload.(map[string]any)
	if !isObject || !user.Truthy(claims[claimExpiry]) {
		return 0, false, nil
	}
	return toNumber(claims[claimExpiry]) * 1000, true, nil
}

// decodePayload splits a token and decodes its middle segment into a JSON value.
// A null payload is malformed as no claim can be read from it.
func decodePayload(raw string) (any, error) {
	if raw == "" {
		return nil, ErrMissing
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments but got %d", ErrMalformed, len(parts))
	}

	segment, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(segment))
	decoder.UseNumber()
	var payload any
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformed)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is null", ErrMalformed)
	}
	return payload, nil
}

// decodeSegment decodes a segment using the forgiving base64 rules of browsers: standard alphabet only, ASCII
// whitespace ignored, padding optional
func decodeSegment(segment string) ([]byte, error) {
	segment = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\f', '\r':
			return -1
		}
		return r
	}, segment)
	if len(segment)%4 == 0 {
		segment = strings.TrimSuffix(segment, "=")
		segment = strings.TrimSuffix(segment, "=")
	}
	return base64.RawStdEncoding.DecodeString(segment)
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// toNumber coerces a decoded JSON value to a number using JavaScript's ToNumber rules; values without a numeric
// reading yield NaN
func toNumber(value any) float64 {
	switch value := value.(type) {
	case nil:
		return 0
	case bool:
		if value {
			return 1
		}
		return 0
	case json.Number:
		return parseFloat(string(value))
	case float64:
		return value
	case string:
		return stringToNumber(value)
	case []any:
		// Arrays coerce through their comma-joined string form
		switch len(value) {
		case 0:
			return 0
		case 1:
			switch element := value[0].(type) {
			case nil:
				return 0
			case bool, map[string]any:
				return math.NaN()
			default:
				return toNumber(element)
			}
		}
		return math.NaN()
	default:
		return math.NaN()
	}
}

func stringToNumber(value string) float64 {
	value = strings.TrimSpace(value)
	switch value {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(value) > 2 && value[0] == '0' {
		base := 0
		switch value[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(value[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalLiteral.MatchString(value) {
		return math.NaN()
	}
	return parseFloat(value)
}

// parseFloat parses a decimal literal; out of range values become infinities
func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

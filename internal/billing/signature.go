// Package billing handles payment-processor webhook ingestion and
// customer registration.
package billing

import (
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance is the replay-mitigation window for webhook event
// timestamps.
const DefaultTolerance = 300 * time.Second

// SignatureHeader holds the parsed contents of a Stripe-Signature
// header.
type SignatureHeader struct {
	Timestamp  int64
	Signatures []string
}

// ParseSignatureHeader parses a payment-processor signature header of
// the form "t=<unix>,v1=<sig>[,v1=<sig>...]". Returns nil when the
// timestamp is missing or non-numeric, or when no v1 entries are
// present. Unrecognized keys are ignored.
func ParseSignatureHeader(header string) *SignatureHeader {
	var (
		timestamp    int64
		hasTimestamp bool
		signatures   []string
	)

	for _, pair := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil
			}
			timestamp = ts
			hasTimestamp = true
		case "v1":
			signatures = append(signatures, value)
		}
	}

	if !hasTimestamp || len(signatures) == 0 {
		return nil
	}
	return &SignatureHeader{Timestamp: timestamp, Signatures: signatures}
}

// IsTimestampValid reports whether the event timestamp falls within
// the tolerance window of current time, inclusive on both bounds.
func IsTimestampValid(timestamp int64, tolerance time.Duration) bool {
	now := time.Now().Unix()
	return abs(now-timestamp) <= int64(tolerance.Seconds())
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

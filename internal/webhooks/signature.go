// Package webhooks verifies and interprets chain indexer webhook deliveries.
// Nothing here touches storage: verification and transition derivation are
// pure so they can be tested apart from the idempotent apply step.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries "t=<unix seconds>,v1=<hex hmac>".
const SignatureHeader = "Blockfrost-Signature"

// DefaultTolerance is how far a delivery timestamp may drift from now.
const DefaultTolerance = 600 * time.Second

var (
	ErrMissingSignature = errors.New("webhook signature header missing or malformed")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	ErrNoSecret         = errors.New("webhook secret not configured")
)

// VerifySignature checks header against an HMAC-SHA256 of "<t>.<rawBody>"
// keyed with secret. Any of several v1 signatures may match, which allows
// secret rotation on the sender side. It fails closed: a missing secret,
// malformed header, mismatch or stale timestamp is an error.
func VerifySignature(header string, rawBody []byte, secret string, now time.Time, tolerance time.Duration) error {
	if strings.TrimSpace(secret) == "" {
		return ErrNoSecret
	}

	timestamp, signatures := parseHeader(header)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil || ts <= 0 || len(signatures) == 0 {
		return ErrMissingSignature
	}

	expected := Sign(timestamp, rawBody, secret)
	valid := false
	for _, sigHex := range signatures {
		decoded, err := hex.DecodeString(sigHex)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidSignature
	}

	skew := now.Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if skew > tolerance {
		return ErrStaleTimestamp
	}
	return nil
}

// Sign returns the raw HMAC for timestamp and body.
func Sign(timestamp string, rawBody []byte, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write([]byte{'.'})
	_, _ = mac.Write(rawBody)
	return mac.Sum(nil)
}

// SignatureHeaderValue formats a header for the given time, body and secret.
func SignatureHeaderValue(at time.Time, rawBody []byte, secret string) string {
	t := strconv.FormatInt(at.Unix(), 10)
	return "t=" + t + ",v1=" + hex.EncodeToString(Sign(t, rawBody, secret))
}

func parseHeader(header string) (string, []string) {
	var t string
	v1 := make([]string, 0, 1)
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.TrimSpace(kv[0])
		val := strings.TrimSpace(kv[1])
		switch {
		case k == "t" && t == "":
			t = val
		case k == "v1" && val != "":
			v1 = append(v1, val)
		}
	}
	return t, v1
}

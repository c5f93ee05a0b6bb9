package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauritzerick/uploadcaffeine-sub000/internal/domain"
)

// SignatureHeader is the HTTP header carrying the webhook signature.
const SignatureHeader = "Stripe-Signature"

// DefaultTolerance bounds how stale a signed timestamp may be.
const DefaultTolerance = 5 * time.Minute

// VerifySignature authenticates a raw webhook payload against the shared
// signing secret and returns the parsed event. The payload must be the exact
// bytes read off the wire; any parsing before verification would break the
// digest. Every failure path returns an error wrapping
// domain.ErrSignatureInvalid and no event.
//
// Header format: "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<payload>'>".
func VerifySignature(payload []byte, header, secret string) (*Event, error) {
	return verifySignatureAt(payload, header, secret, time.Now())
}

func verifySignatureAt(payload []byte, header, secret string, now time.Time) (*Event, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: signing secret not configured", domain.ErrSignatureInvalid)
	}
	if header == "" {
		return nil, fmt.Errorf("%w: missing signature header", domain.ErrSignatureInvalid)
	}

	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return nil, err
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > DefaultTolerance || age < -DefaultTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", domain.ErrSignatureInvalid)
	}

	expected := computeSignature(timestamp, payload, secret)
	matched := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: digest mismatch", domain.ErrSignatureInvalid)
	}

	return parseEvent(payload)
}

func parseSignatureHeader(header string) (int64, []string, error) {
	var timestamp int64 = -1
	var signatures []string
	for _, pair := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", domain.ErrSignatureInvalid)
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, fmt.Errorf("%w: malformed signature header", domain.ErrSignatureInvalid)
	}
	return timestamp, signatures, nil
}

func computeSignature(timestamp int64, payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

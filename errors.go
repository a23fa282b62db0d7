package cafepow

import (
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	// ErrDecodePayload is returned when the payload is not valid hexadecimal.
	ErrDecodePayload = errors.New("decoding failed")

	// ErrWorkerPanic is returned when a search worker panicked. The search is
	// abandoned as a whole; no partial result is reported.
	ErrWorkerPanic = errors.New("search worker panicked")

	// ErrNoSolution is returned when every worker exhausted its range without
	// an accepted digest. It is a definitive outcome, retrying will not help.
	ErrNoSolution = errors.New("no solution in search domain")

	// ErrInvalidConfig is returned when a SearchConfig fails validation.
	ErrInvalidConfig = errors.New("invalid search config")
)

// DecodePayload decodes a hex encoded payload.
func DecodePayload(s string) ([]byte, error) {
	payload, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodePayload, err)
	}
	return payload, nil
}

package cafepow

import (
	"context"
	"hash"

	"github.com/minio/sha256-simd"
)

// innerLimit bounds nonce bytes 1-3 exclusively, so 0xFF is never tried in
// those positions. Solutions that need 0xFF there are out of reach.
const innerLimit = 0xFF

type workerExit int

const (
	exitExhausted workerExit = iota
	exitWon
	exitLost
	exitPreempted
	exitCanceled
)

func (e workerExit) String() string {
	switch e {
	case exitExhausted:
		return "exhausted"
	case exitWon:
		return "won"
	case exitLost:
		return "lost race"
	case exitPreempted:
		return "preempted"
	case exitCanceled:
		return "canceled"
	}
	return "unknown"
}

// searchWorker owns one Range and a private copy of the nonce || payload
// buffer. attempts and found are only read after run returns.
type searchWorker struct {
	index    int
	rng      Range
	buf      []byte
	slot     *resultSlot
	match    func(digest []byte) bool
	attempts uint64
	found    Solution
}

// forEachNonce calls fn for every nonce whose first byte is in [begin, end]
// and whose other bytes are in [0, innerLimit), byte 3 varying fastest.
// It stops as soon as fn returns false and reports whether it ran to the end.
func forEachNonce(begin, end uint8, fn func(nonce [NonceSize]byte) bool) bool {
	var nonce [NonceSize]byte
	for b0 := int(begin); b0 <= int(end); b0++ {
		nonce[0] = byte(b0)
		for b1 := 0; b1 < innerLimit; b1++ {
			nonce[1] = byte(b1)
			for b2 := 0; b2 < innerLimit; b2++ {
				nonce[2] = byte(b2)
				for b3 := 0; b3 < innerLimit; b3++ {
					nonce[3] = byte(b3)
					if !fn(nonce) {
						return false
					}
				}
			}
		}
	}
	return true
}

// hashCandidate hashes buf from a reset state into digest.
func hashCandidate(h hash.Hash, buf []byte, digest *[DigestSize]byte) {
	h.Reset()
	h.Write(buf)
	h.Sum(digest[:0])
}

func (w *searchWorker) run(ctx context.Context) workerExit {
	h := sha256.New()
	var digest [DigestSize]byte
	exit := exitExhausted

	forEachNonce(w.rng.Begin, w.rng.End, func(nonce [NonceSize]byte) bool {
		copy(w.buf[:NonceSize], nonce[:])

		// ctx is polled once per 255 candidates, the slot on every one.
		if nonce[3] == 0 {
			select {
			case <-ctx.Done():
				exit = exitCanceled
				return false
			default:
			}
		}
		if w.slot.solved() {
			exit = exitPreempted
			return false
		}

		hashCandidate(h, w.buf, &digest)
		w.attempts++
		if !w.match(digest[:]) {
			return true
		}

		w.found = Solution{Nonce: nonce, Digest: digest}
		if w.slot.commit(w.found) {
			exit = exitWon
		} else {
			exit = exitLost
		}
		return false
	})
	return exit
}

package cafepow

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/minio/sha256-simd"
)

const (
	// NonceSize is the number of nonce bytes prepended to the payload.
	NonceSize = 4

	// DigestSize is the size of a SHA-256 digest.
	DigestSize = sha256.Size
)

// TargetSuffix is the pattern the last two digest bytes must equal.
var TargetSuffix = [2]byte{0xCA, 0xFE}

// Solution pairs a winning nonce with the digest of nonce || payload.
type Solution struct {
	Nonce  [NonceSize]byte
	Digest [DigestSize]byte
}

// HasTargetSuffix reports whether digest ends with TargetSuffix.
func HasTargetSuffix(digest []byte) bool {
	n := len(digest)
	return n >= 2 && digest[n-1] == TargetSuffix[1] && digest[n-2] == TargetSuffix[0]
}

// Verify recomputes the digest of s.Nonce || payload and checks that it
// matches s.Digest and carries the target suffix.
func (s Solution) Verify(payload []byte) bool {
	buf := make([]byte, 0, NonceSize+len(payload))
	buf = append(buf, s.Nonce[:]...)
	buf = append(buf, payload...)
	digest := sha256.Sum256(buf)
	return bytes.Equal(digest[:], s.Digest[:]) && HasTargetSuffix(digest[:])
}

// WriteTo writes the hex digest and the hex nonce on two lines.
func (s Solution) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "%s\n%s\n", hex.EncodeToString(s.Digest[:]), hex.EncodeToString(s.Nonce[:]))
	return int64(n), err
}

func (s Solution) String() string {
	return fmt.Sprintf("nonce=%x digest=%x", s.Nonce, s.Digest)
}

// resultSlot is the write-once cell shared by all workers of one search.
// Polls take the read lock; the single commit takes the write lock.
type resultSlot struct {
	mu       sync.RWMutex
	solution *Solution
}

func (s *resultSlot) solved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.solution != nil
}

// commit stores sol if the slot is still empty and reports whether it did.
func (s *resultSlot) commit(sol Solution) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solution != nil {
		return false
	}
	s.solution = &sol
	return true
}

func (s *resultSlot) load() (Solution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.solution == nil {
		return Solution{}, false
	}
	return *s.solution, true
}

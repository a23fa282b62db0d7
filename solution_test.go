package cafepow

import (
	"bytes"
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownSolution(t testing.TB) Solution {
	var sol Solution
	copy(sol.Nonce[:], mustDecode(t, "00003997"))
	copy(sol.Digest[:], mustDecode(t, "6681edd1d36af256c615bf6dcfcda03c282c3e0871bd75564458d77c529dcafe"))
	return sol
}

func TestHasTargetSuffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		digest []byte
		want   bool
	}{
		{"match", []byte{0x01, 0xCA, 0xFE}, true},
		{"swapped", []byte{0x01, 0xFE, 0xCA}, false},
		{"last only", []byte{0x01, 0x00, 0xFE}, false},
		{"too short", []byte{0xFE}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasTargetSuffix(tt.digest))
		})
	}
}

func TestSolutionVerify(t *testing.T) {
	t.Parallel()

	payload := mustDecode(t, payloadA)
	sol := knownSolution(t)
	assert.True(t, sol.Verify(payload))
	assert.False(t, sol.Verify(mustDecode(t, payloadB)))

	sol.Nonce[3]++
	assert.False(t, sol.Verify(payload))
}

func TestSolutionWriteTo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := knownSolution(t).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "6681edd1d36af256c615bf6dcfcda03c282c3e0871bd75564458d77c529dcafe\n00003997\n", buf.String())
}

func TestResultSlotWriteOnce(t *testing.T) {
	t.Parallel()

	slot := new(resultSlot)
	assert.False(t, slot.solved())
	_, ok := slot.load()
	assert.False(t, ok)

	const writers = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed []Solution
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sol := Solution{Nonce: [NonceSize]byte{byte(i)}}
			if slot.commit(sol) {
				mu.Lock()
				committed = append(committed, sol)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	require.Len(t, committed, 1)
	assert.True(t, slot.solved())
	sol, ok := slot.load()
	require.True(t, ok)
	assert.Equal(t, committed[0], sol)
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	payload, err := DecodePayload(payloadA)
	require.NoError(t, err)
	assert.Equal(t, payloadA, hex.EncodeToString(payload))

	_, err = DecodePayload("zz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecodePayload))
	var invalid hex.InvalidByteError
	assert.True(t, errors.As(err, &invalid))

	_, err = DecodePayload("abc")
	assert.ErrorIs(t, err, ErrDecodePayload)
	assert.ErrorIs(t, err, hex.ErrLength)
}

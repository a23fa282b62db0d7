package cafepow

import "github.com/DistributedClocks/tracing"

// Tracer records search actions. *tracing.Tracer satisfies it.
type Tracer interface {
	RecordAction(action interface{})
}

type noopTracer struct{}

func (noopTracer) RecordAction(interface{}) {}

var _ Tracer = (*tracing.Tracer)(nil)

type SearchBegin struct {
	Payload    []uint8
	NumWorkers uint
}

type WorkerSearch struct {
	WorkerIndex uint
	Begin       uint8
	End         uint8
}

// WorkerResult is recorded by a worker whose digest was accepted. Committed
// is false when another worker had already filled the result slot.
type WorkerResult struct {
	WorkerIndex uint
	Nonce       []uint8
	Digest      []uint8
	Committed   bool
}

type WorkerCancel struct {
	WorkerIndex uint
	Attempts    uint64
}

type WorkerExhausted struct {
	WorkerIndex uint
	Attempts    uint64
}

type SearchSuccess struct {
	Payload  []uint8
	Nonce    []uint8
	Digest   []uint8
	Attempts uint64
}

type SearchFailure struct {
	Payload  []uint8
	Reason   string
	Attempts uint64
}

package feed

// EmitterHook is an optional callback invoked after a push commits.
// Implementations may forward the entry to subscribers, emit metrics, or
// log. The default implementation is a no-op.
type EmitterHook interface {
	EmitPushed(feed string, seq uint64, recordedAtMs int64, payload []byte)
}

type noopEmitter struct{}

func (noopEmitter) EmitPushed(string, uint64, int64, []byte) {}

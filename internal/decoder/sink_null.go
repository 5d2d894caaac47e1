package decoder

// NullSink discards every sample it's given. It is the production
// wiring's default Sink: a real OS audio device backend is out of this
// repository's scope, but the decoder's state machine, preemption, and
// packet loop are still fully exercised against it when running outside
// of tests.
type NullSink struct{}

func (NullSink) Open(channels, sampleRate int) error { return nil }
func (NullSink) Write(samples []byte) error          { return nil }
func (NullSink) Flush() error                        { return nil }
func (NullSink) Close() error                        { return nil }

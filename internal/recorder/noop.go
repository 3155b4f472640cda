package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordScan(_ *ScanRun) error                      { return nil }
func (n *NoopRecorder) RecordLevels(_ *LevelSnapshot) error              { return nil }
func (n *NoopRecorder) History(_ string, _ int) ([]LevelSnapshot, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                     { return nil }

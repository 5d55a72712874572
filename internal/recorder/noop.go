package recorder

import "StockScope/internal/model"

// NoopRecorder discards rows. Used when no output is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRanking(_ *model.RankingRow) error { return nil }
func (n *NoopRecorder) Close() error                            { return nil }

package metrics

// MultiSink fans telemetry out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRound forwards the round to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRound(s RoundStats) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordRound(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordPurchase forwards purchase events.
func (m *MultiSink) RecordPurchase(ev PurchaseEvent) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordPurchase(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordPenalty forwards penalty events.
func (m *MultiSink) RecordPenalty(ev PenaltyEvent) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordPenalty(ev); err != nil {
			return err
		}
	}
	return nil
}

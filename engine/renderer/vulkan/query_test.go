package vulkan

import (
	"testing"
	"time"
)

func TestTimestampDuration(t *testing.T) {
	tests := []struct {
		name       string
		start, end uint64
		period     float32
		want       time.Duration
	}{
		{"nanosecond ticks", 100, 1100, 1, time.Microsecond},
		{"scaled ticks", 0, 1000, 52.08, 52080 * time.Nanosecond},
		{"equal stamps", 10, 10, 1, 0},
		{"out of order", 20, 10, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timestampDuration(tt.start, tt.end, tt.period)
			diff := got - tt.want
			if diff < -time.Nanosecond || diff > time.Nanosecond {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestampQueriesDisabled(t *testing.T) {
	tq := &TimestampQueries{}
	if tq.Enabled() {
		t.Fatal("queries without a pool report enabled")
	}
	// Recording into a disabled set is a no-op.
	tq.CmdBegin(nil, 0)
	tq.CmdEnd(nil, 0)
	if d, err := tq.Duration(nil, 0); d != 0 || err != nil {
		t.Errorf("Duration = %v, %v; want 0, nil", d, err)
	}
}

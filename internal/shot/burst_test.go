package shot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/jumpshot/internal/testutil"
)

func shotsAt(pairs ...[2]float64) []Record {
	out := make([]Record, len(pairs))
	for i, p := range pairs {
		out[i] = Record{PeakIndex: int64(i * 100), Timestamp: int64(p[0]), Range: p[1]}
	}
	return out
}

func timestamps(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.Timestamp
	}
	return out
}

func TestPruneBursts(t *testing.T) {
	on := BurstConfig{Enabled: true, MinShots: 3, WindowMs: 12000, SlotMs: 8000}

	tests := []struct {
		name    string
		cfg     BurstConfig
		records []Record
		want    []int64
	}{
		{
			name:    "disabled",
			cfg:     BurstConfig{MinShots: 3, WindowMs: 12000, SlotMs: 8000},
			records: shotsAt([2]float64{0, 10}, [2]float64{2000, 15}, [2]float64{4000, 12}),
			want:    []int64{0, 2000, 4000},
		},
		{
			name:    "one slot keeps largest range",
			cfg:     on,
			records: shotsAt([2]float64{0, 10}, [2]float64{2000, 15}, [2]float64{4000, 12}),
			want:    []int64{2000},
		},
		{
			name:    "two slots",
			cfg:     on,
			records: shotsAt([2]float64{0, 10}, [2]float64{3000, 12}, [2]float64{9000, 11}, [2]float64{11000, 9}),
			want:    []int64{3000, 9000},
		},
		{
			name:    "sparse shots untouched",
			cfg:     on,
			records: shotsAt([2]float64{0, 10}, [2]float64{5000, 12}, [2]float64{30000, 11}),
			want:    []int64{0, 5000, 30000},
		},
		{
			name:    "tie keeps earliest",
			cfg:     on,
			records: shotsAt([2]float64{0, 18}, [2]float64{1500, 18}, [2]float64{3000, 18}),
			want:    []int64{0},
		},
		{
			name: "burst then isolated shot",
			cfg:  on,
			records: shotsAt([2]float64{0, 10}, [2]float64{1500, 11}, [2]float64{3000, 12},
				[2]float64{40000, 9}),
			want: []int64{3000, 40000},
		},
		{
			name:    "fewer than min shots",
			cfg:     on,
			records: shotsAt([2]float64{0, 10}, [2]float64{100, 11}),
			want:    []int64{0, 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PruneBursts(tt.records, tt.cfg)
			assert.Equal(t, tt.want, timestamps(got))
		})
	}
}

func TestPruneBursts_EmptyInput(t *testing.T) {
	on := BurstConfig{Enabled: true, MinShots: 3, WindowMs: 12000, SlotMs: 8000}
	assert.Empty(t, PruneBursts(nil, on))
}

func TestDetectAll_BurstPruning(t *testing.T) {
	samples := testutil.Samples(threeShots())

	cfg := DefaultConfig()
	require.Len(t, detectAll(t, NewDetector(cfg), samples), 3)

	// Shots at 1.5 s, 4 s and 6.5 s form one burst inside one slot.
	cfg.Burst.Enabled = true
	records := detectAll(t, NewDetector(cfg), samples)
	require.Len(t, records, 1)
	assert.Equal(t, int64(150), records[0].PeakIndex)
}

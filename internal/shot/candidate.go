package shot

import (
	"github.com/google/uuid"

	"github.com/banshee-data/jumpshot/internal/calibration"
	"github.com/banshee-data/jumpshot/internal/consensus"
	"github.com/banshee-data/jumpshot/internal/window"
)

// Candidate is a provisional shot that has cleared the five gates. Indices
// are live indices into the scanned slice. Post-filters attach their
// results before it becomes a Record.
type Candidate struct {
	PeakIdx     int
	DipIdx      int
	RecIdx      int
	PeakMag     float64
	DipMag      float64
	RecoveryMag float64
	Range       float64
	Timestamp   int64
	Baseline    window.Stats

	Consensus   *consensus.Result
	Calibration *calibration.Result
}

// Triple returns the candidate's phase indices.
func (c *Candidate) Triple() calibration.Triple {
	return calibration.Triple{Peak: c.PeakIdx, Dip: c.DipIdx, Rec: c.RecIdx}
}

// Record is an accepted shot. Indices are absolute sample indices, stable
// across buffer compaction. A Record is never modified after it is returned.
type Record struct {
	ID          string              `json:"id"`
	PeakIndex   int64               `json:"peak_index"`
	DipIndex    int64               `json:"dip_index"`
	RecIndex    int64               `json:"rec_index"`
	Timestamp   int64               `json:"timestamp"`
	PeakMag     float64             `json:"peak_mag"`
	DipMag      float64             `json:"dip_mag"`
	RecoveryMag float64             `json:"recovery_mag"`
	Range       float64             `json:"range"`
	Moving      bool                `json:"moving"`
	Consensus   *consensus.Result   `json:"consensus,omitempty"`
	Calibration *calibration.Result `json:"calibration,omitempty"`
}

func newRecord(c *Candidate, offset int64, moving bool) Record {
	return Record{
		ID:          uuid.NewString(),
		PeakIndex:   offset + int64(c.PeakIdx),
		DipIndex:    offset + int64(c.DipIdx),
		RecIndex:    offset + int64(c.RecIdx),
		Timestamp:   c.Timestamp,
		PeakMag:     c.PeakMag,
		DipMag:      c.DipMag,
		RecoveryMag: c.RecoveryMag,
		Range:       c.Range,
		Moving:      moving,
		Consensus:   c.Consensus,
		Calibration: c.Calibration,
	}
}

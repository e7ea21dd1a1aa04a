package shot

// PruneBursts thins clusters of shots. Starting from each unpruned shot, the
// shots within WindowMs of it form a group; a group of at least MinShots is
// divided into SlotMs slots from its first shot and only the largest-range
// shot of each slot is kept (the earliest on ties). records must be in time
// order; the result is too. A disabled config returns records unchanged.
func PruneBursts(records []Record, cfg BurstConfig) []Record {
	if !cfg.Enabled || cfg.MinShots < 2 || cfg.SlotMs <= 0 || len(records) < cfg.MinShots {
		return records
	}

	out := make([]Record, 0, len(records))
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].Timestamp-records[start].Timestamp <= cfg.WindowMs {
			end++
		}
		if end-start < cfg.MinShots {
			out = append(out, records[start])
			start++
			continue
		}

		t0 := records[start].Timestamp
		best := start
		slot := int64(0)
		for j := start + 1; j < end; j++ {
			s := (records[j].Timestamp - t0) / cfg.SlotMs
			if s != slot {
				out = append(out, records[best])
				best, slot = j, s
				continue
			}
			if records[j].Range > records[best].Range {
				best = j
			}
		}
		out = append(out, records[best])
		start = end
	}
	return out
}

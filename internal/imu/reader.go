package imu

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNotMonotonic is returned when a recording's timestamps go backwards.
var ErrNotMonotonic = errors.New("sample timestamps are not monotonic")

var csvColumns = []string{"t", "ax", "ay", "az", "gx", "gy", "gz"}

// LoadRecording reads a recorded session from path. The format is chosen
// by extension: .json for a JSON array of samples, .csv for a header row
// "t,ax,ay,az,gx,gy,gz" followed by one sample per line.
func LoadRecording(path string) ([]Sample, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported recording extension %q", ext)
	}
}

// ReadJSON decodes a JSON array of samples. Samples whose aMag was not
// recorded have it derived from the acceleration axes.
func ReadJSON(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := json.NewDecoder(r).Decode(&samples); err != nil {
		return nil, fmt.Errorf("decode samples: %w", err)
	}
	for i := range samples {
		s := &samples[i]
		if s.AMag == 0 {
			s.AMag = math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
		}
	}
	if err := checkMonotonic(samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// ReadCSV decodes a CSV recording. Columns are located by header name so
// extra columns are ignored; all of t, ax, ay, az, gx, gy, gz are required.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	cols := make([]int, len(csvColumns))
	for i, name := range csvColumns {
		c, ok := idx[name]
		if !ok {
			return nil, fmt.Errorf("csv header missing column %q", name)
		}
		cols[i] = c
	}

	var samples []Sample
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		var v [7]float64
		for i, c := range cols {
			if c >= len(rec) {
				return nil, fmt.Errorf("csv line %d: missing column %q", line, csvColumns[i])
			}
			v[i], err = strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %q: %w", line, csvColumns[i], err)
			}
		}
		samples = append(samples, NewSample(int64(v[0]), v[1], v[2], v[3], v[4], v[5], v[6]))
	}
	if err := checkMonotonic(samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func checkMonotonic(samples []Sample) error {
	for i := 1; i < len(samples); i++ {
		if samples[i].T < samples[i-1].T {
			return fmt.Errorf("%w: sample %d (t=%d) precedes sample %d (t=%d)",
				ErrNotMonotonic, i, samples[i].T, i-1, samples[i-1].T)
		}
	}
	return nil
}

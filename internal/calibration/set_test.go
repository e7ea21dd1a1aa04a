package calibration

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_EncodeDecode(t *testing.T) {
	set := testSet()
	set.ID = "set-1"
	set.CreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	set.PatternCounts = map[Activity]int{Shooting: 10, Walking: 10}

	data, err := Encode(set)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	if diff := cmp.Diff(set, got); diff != "" {
		t.Errorf("decoded set mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Set)
	}{
		{"wrong version", func(s *Set) { s.Version = 99 }},
		{"unknown activity", func(s *Set) { s.Profiles["swimming"] = s.Profiles[Walking] }},
		{"zero count", func(s *Set) { s.Profiles[Walking].Count = 0 }},
		{"short features", func(s *Set) { s.Profiles[Walking].Features = s.Profiles[Walking].Features[:3] }},
		{"renamed feature", func(s *Set) { s.Profiles[Shooting].Features[2].Name = "bogus" }},
		{"negative std", func(s *Set) { s.Profiles[Shooting].Features[0].Std = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSet()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema))

			_, err = Encode(s)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}

	var nilSet *Set
	assert.ErrorIs(t, nilSet.Validate(), ErrSchema)
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSchema)

	old, err := json.Marshal(map[string]any{"version": 0, "profiles": map[string]any{}})
	require.NoError(t, err)
	_, err = Decode(old)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestDecodeOrNil(t *testing.T) {
	assert.Nil(t, DecodeOrNil(nil))
	assert.Nil(t, DecodeOrNil([]byte("garbage")))

	data, err := Encode(testSet())
	require.NoError(t, err)
	got := DecodeOrNil(data)
	require.NotNil(t, got)
	assert.True(t, got.Usable())
}

func TestSet_NilSafeAccessors(t *testing.T) {
	var s *Set
	assert.Nil(t, s.Profile(Shooting))
	assert.False(t, s.Usable())
	assert.False(t, (&Set{}).Usable())
	assert.True(t, testSet().Usable())
}

func TestActivity_Valid(t *testing.T) {
	for _, a := range Activities {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, Activity("swimming").Valid())
}

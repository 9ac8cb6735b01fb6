package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalStringAndNumber(t *testing.T) {
	var v struct {
		A Duration `json:"a"`
		B Duration `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"24h","b":1000000000}`), &v))
	assert.Equal(t, 24*time.Hour, v.A.Duration)
	assert.Equal(t, time.Second, v.B.Duration)

	assert.Error(t, json.Unmarshal([]byte(`{"a":"soon"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestDuration_Marshal(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(b))
}

func TestTimestamp_LegacyAndRFC3339(t *testing.T) {
	var v struct {
		Legacy *Timestamp `json:"legacy"`
		Modern *Timestamp `json:"modern"`
		Null   *Timestamp `json:"null"`
	}
	in := `{"legacy":"2024-03-05T10:11:12.345678","modern":"2024-03-05T10:11:12Z","null":null}`
	require.NoError(t, json.Unmarshal([]byte(in), &v))

	require.NotNil(t, v.Legacy)
	assert.Equal(t, 2024, v.Legacy.Year())
	assert.Equal(t, 345678000, v.Legacy.Nanosecond())
	require.NotNil(t, v.Modern)
	assert.Equal(t, time.UTC, v.Modern.Location())
	assert.Nil(t, v.Null)
}

func TestTimestamp_RoundTrip(t *testing.T) {
	orig := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC))
	b, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Timestamp
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, orig.Equal(back.Time))

	_, err = ParseTimestamp("yesterday")
	assert.Error(t, err)
}

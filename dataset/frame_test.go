package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFrame() *Frame {
	return NewFrame(
		[]string{"model_key", "mileage", "engine_power", "has_gps", "rental_price_per_day"},
		[][]string{
			{"Citroën", "140411", "100", "True", "106"},
			{"Citroën", "13929", "317", "False", "264"},
			{"Audi", "183297", "120", "False", ""},
			{"Peugeot", "128035", "135", "True", "101.5"},
		},
	)
}

func TestFrameInfersColumnKinds(t *testing.T) {
	f := sampleFrame()

	keys, ok := f.Column("model_key")
	require.True(t, ok)
	assert.Equal(t, "Citroën", keys[0])

	mileage, _ := f.Column("mileage")
	assert.Equal(t, int64(140411), mileage[0])

	gps, _ := f.Column("has_gps")
	assert.Equal(t, true, gps[0])
	assert.Equal(t, false, gps[1])

	prices, _ := f.Column("rental_price_per_day")
	assert.Equal(t, 106.0, prices[0])
	assert.Nil(t, prices[2])
	assert.Equal(t, 101.5, prices[3])
}

func TestFrameUniquePreservesFirstSeenOrder(t *testing.T) {
	f := sampleFrame()

	values, ok := f.Unique("model_key")
	require.True(t, ok)
	assert.Equal(t, []any{"Citroën", "Audi", "Peugeot"}, values)

	_, ok = f.Unique("nope")
	assert.False(t, ok)
}

func TestFrameUniqueHasNoDuplicates(t *testing.T) {
	f := sampleFrame()
	for _, col := range f.Columns() {
		values, ok := f.Unique(col)
		require.True(t, ok)
		seen := map[any]bool{}
		for _, v := range values {
			assert.False(t, seen[v], "duplicate %v in %s", v, col)
			seen[v] = true
		}
	}
}

func TestFrameHead(t *testing.T) {
	f := sampleFrame()

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"fewer than available", 2, 2},
		{"exactly available", 4, 4},
		{"more than available truncates", 15, 4},
		{"zero", 0, 0},
		{"negative", -3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, f.Head(tt.n), tt.want)
		})
	}
}

func TestRecordMarshalKeepsColumnOrder(t *testing.T) {
	f := NewFrame([]string{"b", "a", "c"}, [][]string{{"x", "1", ""}})
	data, err := json.Marshal(f.Head(1)[0])
	require.NoError(t, err)
	assert.Equal(t, `{"b":"x","a":1,"c":null}`, string(data))

	v, ok := f.Head(1)[0].Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
}

func TestFramePadsShortRows(t *testing.T) {
	f := NewFrame([]string{"a", "b"}, [][]string{{"1"}, {"2", "3"}})
	b, _ := f.Column("b")
	assert.Equal(t, []any{nil, int64(3)}, b)
}

func TestFloatAndInt(t *testing.T) {
	v, ok := Float(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	_, ok = Float("3")
	assert.False(t, ok)

	i, ok := Int(12.0)
	assert.True(t, ok)
	assert.Equal(t, int64(12), i)

	_, ok = Int(12.5)
	assert.False(t, ok)
	_, ok = Int(nil)
	assert.False(t, ok)
}

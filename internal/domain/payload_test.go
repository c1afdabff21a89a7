package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Text
	}{
		{`"Koshi"`, "Koshi"},
		{`2019`, "2019"},
		{`2019.0`, "2019"},
		{`12.5`, "12.5"},
		{`null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad Text
	assert.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}

func TestDecodeYears_MixedTypes(t *testing.T) {
	years, err := DecodeYears(json.RawMessage(`{"years":[2019,"2020",2021.0,null]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"2019", "2020", "2021"}, years)
}

func TestDecodeStations(t *testing.T) {
	stations, err := DecodeStations(json.RawMessage(`{"stations":[
		{"Station_ID":695,"Station_Name":"Chatara","Latitude":26.86,"Longitude":87.15,"River":"Koshi","Station_Type":null}
	]}`))
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, Text("695"), stations[0].StationID)
	assert.Equal(t, Text("Chatara"), stations[0].StationName)
	assert.Empty(t, stations[0].StationType)

	_, err = DecodeStations(json.RawMessage(`{"stations":"none"}`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeLoadResult(t *testing.T) {
	res, err := DecodeLoadResult(json.RawMessage(`{"rivers":["Koshi","Bagmati"],"sediment_columns":["Suspended"]}`))
	require.NoError(t, err)
	assert.Equal(t, []Text{"Koshi", "Bagmati"}, res.Rivers)
	assert.Equal(t, []string{"Suspended"}, res.SedimentColumns)

	_, err = DecodeLoadResult(json.RawMessage(`[]`))
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRecord_PreservesKeyOrder(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"Zeta":1,"Date":"2020-01-01","Alpha":null}`), &r))
	assert.Equal(t, []string{"Zeta", "Date", "Alpha"}, r.Keys())

	v, ok := r.Field("Alpha")
	require.True(t, ok)
	assert.JSONEq(t, `null`, string(v))
	_, ok = r.Field("Beta")
	assert.False(t, ok)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":1,"Date":"2020-01-01","Alpha":null}`, string(out))
}

func TestNewRecord(t *testing.T) {
	r := NewRecord("Date", "2020-01-01", "Level", 1.5, "Date", "2020-01-02")
	assert.Equal(t, []string{"Date", "Level"}, r.Keys())
	v, _ := r.Field("Date")
	assert.JSONEq(t, `"2020-01-02"`, string(v))
}

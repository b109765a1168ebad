package models_test

import (
	"encoding/json"
	"testing"

	"github.com/UnknownOlympus/kakao-geocoder/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeDocument_FieldMapping(t *testing.T) {
	payload := `{"place_name":"City Hall","address_name":"1 Main St","y":37.5,"x":127.0,"distance":12.3}`

	var doc models.GeocodeDocument
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	assert.Equal(t, "City Hall", doc.PlaceName)
	assert.Equal(t, "1 Main St", doc.AddressName)
	assert.InDelta(t, 37.5, float64(doc.Latitude), 1e-9)
	assert.InDelta(t, 127.0, float64(doc.Longitude), 1e-9)
	assert.InDelta(t, 12.3, float64(doc.Distance), 1e-9)

	t.Run("encodes back to provider field names", func(t *testing.T) {
		out, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(out))
	})
}

func TestGeocodeDocument_StringNumbers(t *testing.T) {
	payload := `{"address_name":"서울 중구 세종대로 110","y":"37.5663174209601","x":"126.977829174031","distance":""}`

	var doc models.GeocodeDocument
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	assert.Empty(t, doc.PlaceName)
	assert.InEpsilon(t, 37.5663174209601, float64(doc.Latitude), 1e-12)
	assert.InEpsilon(t, 126.977829174031, float64(doc.Longitude), 1e-12)
	assert.Zero(t, float64(doc.Distance))

	coords := doc.Coordinates()
	assert.InEpsilon(t, 37.5663174209601, coords.Latitude, 1e-12)
	assert.InEpsilon(t, 126.977829174031, coords.Longitude, 1e-12)
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "number", input: `12.5`, want: 12.5},
		{name: "numeric string", input: `"12.5"`, want: 12.5},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "garbage string", input: `"abc"`, wantErr: true},
		{name: "NaN string", input: `"NaN"`, wantErr: true},
		{name: "Inf string", input: `"Inf"`, wantErr: true},
		{name: "negative Infinity string", input: `"-Infinity"`, wantErr: true},
		{name: "boolean", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n models.Number
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, float64(n), 1e-9)
		})
	}
}

func TestGeocodeDocument_NonFiniteCoordinates(t *testing.T) {
	var doc models.GeocodeDocument
	err := json.Unmarshal([]byte(`{"address_name":"1 Main St","y":"NaN","x":"Inf"}`), &doc)

	require.ErrorIs(t, err, models.ErrNonFiniteNumber)
}

func TestGeocodeDocument_DecodedValuesEncode(t *testing.T) {
	payload := `{"place_name":"","address_name":"1 Main St","y":"37.5","x":"127","distance":"1e3"}`

	var doc models.GeocodeDocument
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"place_name":"","address_name":"1 Main St","y":37.5,"x":127,"distance":1000}`, string(out))
}

func TestGeocodeResponse_Decode(t *testing.T) {
	payload := `{
		"meta": {"total_count": 2, "pageable_count": 2, "is_end": true},
		"documents": [
			{"address_name": "B", "x": "2", "y": "1"},
			{"address_name": "A", "x": "4", "y": "3"}
		]
	}`

	var resp models.GeocodeResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.Equal(t, models.Meta{TotalCount: 2, PageableCount: 2, IsEnd: true}, resp.Meta)
	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "B", resp.Documents[0].AddressName)
	assert.Equal(t, "A", resp.Documents[1].AddressName)
}

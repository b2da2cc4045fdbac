package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocationID(t *testing.T) {
	tests := []struct {
		name     string
		point    GeoPoint
		expected LocationID
	}{
		{"four fractional digits", GeoPoint{Lat: 38.0765, Lng: 128.6234}, "38.0765#128.6234"},
		{"rounds to four digits", GeoPoint{Lat: 38.07654, Lng: 128.62346}, "38.0765#128.6235"},
		{"pads short values", GeoPoint{Lat: 1.5, Lng: -2}, "1.5000#-2.0000"},
		{"negative zero normalised", GeoPoint{Lat: -0.00001, Lng: 0}, "0.0000#0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewLocationID(tt.point))
		})
	}
}

func TestLocationID_Point(t *testing.T) {
	p, ok := LocationID("38.0765#128.6234").Point()
	require.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 38.0765, Lng: 128.6234}, p)

	for _, bad := range []LocationID{"", "38.0765", "a#b", "91#10", "1#2#3"} {
		_, ok := bad.Point()
		assert.False(t, ok, "id %q", bad)
	}
}

func TestGeoPoint_Valid(t *testing.T) {
	assert.True(t, GeoPoint{Lat: 90, Lng: -180}.Valid())
	assert.False(t, GeoPoint{Lat: 90.1, Lng: 0}.Valid())
	assert.False(t, GeoPoint{Lat: 0, Lng: 180.5}.Valid())
	assert.False(t, GeoPoint{Lat: math.NaN(), Lng: 0}.Valid())
	assert.False(t, GeoPoint{Lat: 0, Lng: math.Inf(1)}.Valid())
}

func TestViewport_Contains(t *testing.T) {
	v := Viewport{SouthWest: GeoPoint{Lat: 33, Lng: 124}, NorthEast: GeoPoint{Lat: 39, Lng: 131}}
	assert.True(t, v.Contains(GeoPoint{Lat: 38.0765, Lng: 128.6234}))
	assert.True(t, v.Contains(GeoPoint{Lat: 33, Lng: 131}), "edges are inside")
	assert.False(t, v.Contains(GeoPoint{Lat: 40, Lng: 128}))

	wrap := Viewport{SouthWest: GeoPoint{Lat: -20, Lng: 170}, NorthEast: GeoPoint{Lat: -10, Lng: -170}}
	assert.True(t, wrap.Contains(GeoPoint{Lat: -15, Lng: 175}))
	assert.True(t, wrap.Contains(GeoPoint{Lat: -15, Lng: -175}))
	assert.False(t, wrap.Contains(GeoPoint{Lat: -15, Lng: 0}))

	assert.False(t, Viewport{SouthWest: GeoPoint{Lat: 10}, NorthEast: GeoPoint{Lat: 5}}.Valid())
}

func TestParseSurferLevel(t *testing.T) {
	tests := []struct {
		in    string
		level SurferLevel
		ok    bool
	}{
		{"beginner", LevelBeginner, true},
		{" Advanced ", LevelAdvanced, true},
		{"", LevelIntermediate, true},
		{"any", LevelIntermediate, true},
		{"pro", LevelIntermediate, false},
	}

	for _, tt := range tests {
		level, ok := ParseSurferLevel(tt.in)
		assert.Equal(t, tt.level, level, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestMarkerKey(t *testing.T) {
	id := LocationID("38.0765#128.6234")

	forecast := ForecastMarkerKey(id)
	assert.Equal(t, MarkerForecast, forecast.Kind())
	assert.Equal(t, id, forecast.LocationID())

	saved := SavedMarkerKey(id)
	assert.Equal(t, MarkerKey("saved:38.0765#128.6234"), saved)
	assert.Equal(t, MarkerSaved, saved.Kind())
	assert.Equal(t, id, saved.LocationID())
}

func TestSavedEntry_Key(t *testing.T) {
	e := SavedEntry{LocationID: "38.0765#128.6234", SurfTimestamp: "2026-10-14T06:00:00Z"}
	assert.Equal(t, SaveKey("38.0765#128.6234#2026-10-14T06:00:00Z"), e.Key())
}

func TestDatasetContext_Keys(t *testing.T) {
	dc := DatasetContext{Date: "2026-10-14"}
	assert.Equal(t, "2026-10-14:any", dc.Key())
	assert.Equal(t, "surf:dataset:2026-10-14:any", dc.DatasetCacheKey())

	dc.Time = "06:00"
	assert.Equal(t, "surf:forecast:2026-10-14:06:00:38.0765#128.6234", dc.ForecastCacheKey("38.0765#128.6234"))
}

func TestMapEvent_Unmarshal(t *testing.T) {
	raw := `{"session_id":"s1","user_id":"u1","type":"click","point":{"lat":38.0765,"lng":128.6234}}`

	var event MapEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))
	assert.Equal(t, EventClick, event.Type)
	assert.Equal(t, "u1", event.UserID)
	require.NotNil(t, event.Point)
	assert.Equal(t, 128.6234, event.Point.Lng)
	assert.Nil(t, event.Viewport)
}

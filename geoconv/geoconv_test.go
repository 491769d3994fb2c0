package geoconv_test

import (
	"encoding/json"
	"testing"

	"github.com/code19m/errx"
	"github.com/geodepot/geodepot/geoconv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKML = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Placemark>
    <name>Test Point</name>
    <Point><coordinates>-122.0,37.0,0</coordinates></Point>
  </Placemark>
</kml>`

func decodeFC(t *testing.T, data []byte) map[string]any {
	t.Helper()

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestConvertKMLPoint(t *testing.T) {
	out, err := geoconv.ConvertKML([]byte(validKML))
	require.NoError(t, err)

	doc := decodeFC(t, out)
	assert.Equal(t, "FeatureCollection", doc["type"])

	features, ok := doc["features"].([]any)
	require.True(t, ok)
	require.Len(t, features, 1)

	feature := features[0].(map[string]any)
	assert.Equal(t, "Feature", feature["type"])

	geometry := feature["geometry"].(map[string]any)
	assert.Equal(t, "Point", geometry["type"])
	assert.Equal(t, []any{-122.0, 37.0, 0.0}, geometry["coordinates"])

	properties := feature["properties"].(map[string]any)
	assert.Equal(t, "Test Point", properties["name"])
}

func TestConvertKMLInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "broken markup", input: []byte("<kml><invalid structure</kml>")},
		{name: "not utf8", input: []byte{0xff, 0xfe, '<', 0x00, 'k', 0x00}},
		{name: "wrong root element", input: []byte("<svg></svg>")},
		{name: "empty input", input: []byte("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geoconv.ConvertKML(tt.input)
			require.Error(t, err)

			ex := errx.AsErrorX(err)
			assert.Equal(t, geoconv.CodeInvalidKML, ex.Code())
			assert.Equal(t, errx.T_Validation, ex.Type())
		})
	}
}

func TestConvertKMLNoPlacemarks(t *testing.T) {
	out, err := geoconv.ConvertKML([]byte(`<kml><Document><name>empty</name></Document></kml>`))
	require.NoError(t, err)

	doc := decodeFC(t, out)
	assert.Equal(t, "FeatureCollection", doc["type"])
	assert.Empty(t, doc["features"])
}

func TestConvertKMLNestedFolders(t *testing.T) {
	input := `<kml>
  <Document>
    <Folder>
      <Placemark>
        <name>Route</name>
        <LineString><coordinates>
          10.0,20.0 11.0,21.0 12.0,22.0
        </coordinates></LineString>
      </Placemark>
      <Folder>
        <Placemark>
          <name>Zone</name>
          <Polygon>
            <outerBoundaryIs><LinearRing>
              <coordinates>0,0 4,0 4,4 0,4 0,0</coordinates>
            </LinearRing></outerBoundaryIs>
            <innerBoundaryIs><LinearRing>
              <coordinates>1,1 2,1 2,2 1,2 1,1</coordinates>
            </LinearRing></innerBoundaryIs>
          </Polygon>
        </Placemark>
      </Folder>
    </Folder>
  </Document>
</kml>`

	out, err := geoconv.ConvertKML([]byte(input))
	require.NoError(t, err)

	doc := decodeFC(t, out)
	features := doc["features"].([]any)
	require.Len(t, features, 2)

	line := features[0].(map[string]any)
	lineGeom := line["geometry"].(map[string]any)
	assert.Equal(t, "LineString", lineGeom["type"])
	assert.Len(t, lineGeom["coordinates"].([]any), 3)

	zone := features[1].(map[string]any)
	zoneGeom := zone["geometry"].(map[string]any)
	assert.Equal(t, "Polygon", zoneGeom["type"])
	rings := zoneGeom["coordinates"].([]any)
	require.Len(t, rings, 2)
	assert.Len(t, rings[0].([]any), 5)
}

func TestConvertKMLMultiGeometry(t *testing.T) {
	input := `<kml>
  <Placemark>
    <name>Pair</name>
    <MultiGeometry>
      <Point><coordinates>1,2</coordinates></Point>
      <Point><coordinates>3,4</coordinates></Point>
    </MultiGeometry>
  </Placemark>
</kml>`

	out, err := geoconv.ConvertKML([]byte(input))
	require.NoError(t, err)

	doc := decodeFC(t, out)
	features := doc["features"].([]any)
	require.Len(t, features, 1)

	geometry := features[0].(map[string]any)["geometry"].(map[string]any)
	assert.Equal(t, "GeometryCollection", geometry["type"])
	assert.Len(t, geometry["geometries"].([]any), 2)
}

func TestConvertKMLMalformedCoordinates(t *testing.T) {
	input := `<kml><Placemark><Point><coordinates>not-a-number,foo</coordinates></Point></Placemark></kml>`

	_, err := geoconv.ConvertKML([]byte(input))
	require.Error(t, err)

	ex := errx.AsErrorX(err)
	assert.Equal(t, geoconv.CodeInvalidKML, ex.Code())
}

func TestParseGeoJSON(t *testing.T) {
	valid := `{"type":"FeatureCollection","features":[]}`

	doc, err := geoconv.ParseGeoJSON([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", doc["type"])
}

func TestParseGeoJSONInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "broken json", input: `{"type": "FeatureCollection", "features": [}`},
		{name: "missing type member", input: `{"data": "not geojson"}`},
		{name: "not an object", input: `[1, 2, 3]`},
		{name: "empty", input: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geoconv.ParseGeoJSON([]byte(tt.input))
			require.Error(t, err)

			ex := errx.AsErrorX(err)
			assert.Equal(t, geoconv.CodeInvalidGeoJSON, ex.Code())
			assert.Equal(t, errx.T_Validation, ex.Type())
		})
	}
}

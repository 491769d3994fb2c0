package filekind_test

import (
	"testing"

	"github.com/geodepot/geodepot/filekind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected filekind.Kind
		ok       bool
	}{
		{name: "geo", input: "geo", expected: filekind.Geo, ok: true},
		{name: "image", input: "image", expected: filekind.Image, ok: true},
		{name: "unknown", input: "video", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "case sensitive", input: "Geo", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := filekind.Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		expected    filekind.Kind
		ok          bool
	}{
		{name: "kml", contentType: "application/vnd.google-earth.kml+xml", expected: filekind.Geo, ok: true},
		{name: "geojson", contentType: "application/geo+json", expected: filekind.Geo, ok: true},
		{name: "json", contentType: "application/json", expected: filekind.Geo, ok: true},
		{name: "octet stream", contentType: "application/octet-stream", expected: filekind.Geo, ok: true},
		{name: "png", contentType: "image/png", expected: filekind.Image, ok: true},
		{name: "jpeg", contentType: "image/jpeg", expected: filekind.Image, ok: true},
		{name: "jpg alias", contentType: "image/jpg", expected: filekind.Image, ok: true},
		{name: "gif", contentType: "image/gif", expected: filekind.Image, ok: true},
		{name: "webp", contentType: "image/webp", expected: filekind.Image, ok: true},
		{name: "pdf rejected", contentType: "application/pdf", ok: false},
		{name: "svg rejected", contentType: "image/svg+xml", ok: false},
		{name: "empty rejected", contentType: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := filekind.Detect(tt.contentType)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestAcceptedContentTypes(t *testing.T) {
	geo := filekind.AcceptedContentTypes(filekind.Geo)
	require.NotEmpty(t, geo)
	assert.Contains(t, geo, "application/vnd.google-earth.kml+xml")
	assert.Contains(t, geo, "application/geo+json")
	assert.IsIncreasing(t, geo)

	image := filekind.AcceptedContentTypes(filekind.Image)
	require.NotEmpty(t, image)
	assert.Contains(t, image, "image/png")
	assert.IsIncreasing(t, image)

	assert.Nil(t, filekind.AcceptedContentTypes(filekind.Kind("video")))
}

// Package filekind classifies incoming files into the storage areas
// the service manages: geospatial documents and images.
package filekind

import "sort"

// Kind is the storage area a file belongs to.
type Kind string

const (
	Geo   Kind = "geo"
	Image Kind = "image"
)

// Content types accepted by the intake pipeline.
const (
	// Geospatial documents.
	ContentTypeKML         = "application/vnd.google-earth.kml+xml"
	ContentTypeJSON        = "application/json"
	ContentTypeGeoJSON     = "application/geo+json"
	ContentTypeOctetStream = "application/octet-stream"

	// Images.
	ContentTypePNG  = "image/png"
	ContentTypeJPEG = "image/jpeg"
	ContentTypeJPG  = "image/jpg" // non-standard alias some clients declare
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var geoContentTypes = map[string]struct{}{
	ContentTypeKML:         {},
	ContentTypeJSON:        {},
	ContentTypeGeoJSON:     {},
	ContentTypeOctetStream: {},
}

var imageContentTypes = map[string]struct{}{
	ContentTypePNG:  {},
	ContentTypeJPEG: {},
	ContentTypeJPG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Parse converts a string such as a URL path segment into a Kind.
func Parse(s string) (Kind, bool) {
	switch Kind(s) {
	case Geo, Image:
		return Kind(s), true
	default:
		return "", false
	}
}

// String returns the kind as a plain string.
func (k Kind) String() string {
	return string(k)
}

// Detect classifies a declared content type into a Kind.
// The second return value is false when the content type is not
// accepted for any kind.
func Detect(contentType string) (Kind, bool) {
	if _, ok := geoContentTypes[contentType]; ok {
		return Geo, true
	}
	if _, ok := imageContentTypes[contentType]; ok {
		return Image, true
	}
	return "", false
}

// AcceptedContentTypes returns the content types accepted for the kind,
// sorted for stable error reporting.
func AcceptedContentTypes(k Kind) []string {
	var src map[string]struct{}
	switch k {
	case Geo:
		src = geoContentTypes
	case Image:
		src = imageContentTypes
	default:
		return nil
	}

	out := make([]string, 0, len(src))
	for ct := range src {
		out = append(out, ct)
	}
	sort.Strings(out)
	return out
}

package geoconv

// Error codes for geospatial document handling.
const (
	// CodeInvalidKML is returned when a KML document cannot be parsed
	// or converted to GeoJSON.
	CodeInvalidKML = "INVALID_KML_DOCUMENT"

	// CodeInvalidGeoJSON is returned when a stored geospatial document
	// is not a JSON object carrying the mandatory "type" member.
	CodeInvalidGeoJSON = "INVALID_GEO_CONTENT"
)

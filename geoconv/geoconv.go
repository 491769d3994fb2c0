// Package geoconv converts KML documents to GeoJSON and performs the
// structural parse applied to stored geospatial documents on retrieval.
package geoconv

import (
	"encoding/json"
	"encoding/xml"

	"github.com/code19m/errx"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// geometry marshals to any of the GeoJSON geometry objects; Coordinates
// holds the type-specific nesting depth.
type geometry struct {
	Type        string     `json:"type"`
	Coordinates any        `json:"coordinates,omitempty"`
	Geometries  []geometry `json:"geometries,omitempty"`
}

// ConvertKML converts a KML document to a GeoJSON FeatureCollection.
// Placemark names and descriptions are carried over as feature properties;
// positions keep the altitude component when the document carries one.
func ConvertKML(data []byte) ([]byte, error) {
	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, errx.New(
			"invalid KML structure or encoding",
			errx.WithCode(CodeInvalidKML),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"cause": err.Error()}),
		)
	}

	placemarks := root.collectPlacemarks()
	features := make([]feature, 0, len(placemarks))
	for _, pm := range placemarks {
		geom, ok, err := buildGeometry(pm)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		if !ok {
			// Placemark without a supported geometry contributes no feature.
			continue
		}

		props := map[string]any{}
		if pm.Name != "" {
			props["name"] = pm.Name
		}
		if pm.Description != "" {
			props["description"] = pm.Description
		}

		features = append(features, feature{
			Type:       "Feature",
			Geometry:   geom,
			Properties: props,
		})
	}

	out, err := json.Marshal(featureCollection{
		Type:     "FeatureCollection",
		Features: features,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return out, nil
}

// ParseGeoJSON performs the structural parse applied to stored geo
// documents: the content must be a JSON object with a "type" member.
// It returns the parsed document.
func ParseGeoJSON(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errx.New(
			"could not parse stored geo document",
			errx.WithCode(CodeInvalidGeoJSON),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"cause": err.Error()}),
		)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errx.New(
			"geo document is not a JSON object",
			errx.WithCode(CodeInvalidGeoJSON),
			errx.WithType(errx.T_Validation),
		)
	}

	if _, ok := obj["type"]; !ok {
		return nil, errx.New(
			"geo document is missing the type member",
			errx.WithCode(CodeInvalidGeoJSON),
			errx.WithType(errx.T_Validation),
		)
	}

	return obj, nil
}

func buildGeometry(pm kmlPlacemark) (geometry, bool, error) {
	switch {
	case pm.Point != nil:
		return pointGeometry(*pm.Point)
	case pm.LineString != nil:
		return lineStringGeometry(*pm.LineString)
	case pm.Polygon != nil:
		return polygonGeometry(*pm.Polygon)
	case pm.MultiGeometry != nil:
		return multiGeometry(*pm.MultiGeometry)
	default:
		return geometry{}, false, nil
	}
}

func pointGeometry(p kmlPoint) (geometry, bool, error) {
	pos, err := parseSingle(p.Coordinates)
	if err != nil {
		return geometry{}, false, err
	}
	return geometry{Type: "Point", Coordinates: pos}, true, nil
}

func lineStringGeometry(ls kmlLineString) (geometry, bool, error) {
	positions, err := parsePositions(ls.Coordinates)
	if err != nil {
		return geometry{}, false, err
	}
	return geometry{Type: "LineString", Coordinates: positions}, true, nil
}

func polygonGeometry(pg kmlPolygon) (geometry, bool, error) {
	outer, err := parsePositions(pg.OuterBoundary.LinearRing.Coordinates)
	if err != nil {
		return geometry{}, false, err
	}

	rings := [][][]float64{outer}
	for _, inner := range pg.InnerBoundaries {
		ring, err := parsePositions(inner.LinearRing.Coordinates)
		if err != nil {
			return geometry{}, false, err
		}
		rings = append(rings, ring)
	}

	return geometry{Type: "Polygon", Coordinates: rings}, true, nil
}

func multiGeometry(mg kmlMultiGeometry) (geometry, bool, error) {
	members := make([]geometry, 0, len(mg.Points)+len(mg.LineStrings)+len(mg.Polygons))

	for _, p := range mg.Points {
		g, ok, err := pointGeometry(p)
		if err != nil {
			return geometry{}, false, err
		}
		if ok {
			members = append(members, g)
		}
	}
	for _, ls := range mg.LineStrings {
		g, ok, err := lineStringGeometry(ls)
		if err != nil {
			return geometry{}, false, err
		}
		if ok {
			members = append(members, g)
		}
	}
	for _, pg := range mg.Polygons {
		g, ok, err := polygonGeometry(pg)
		if err != nil {
			return geometry{}, false, err
		}
		if ok {
			members = append(members, g)
		}
	}

	if len(members) == 0 {
		return geometry{}, false, nil
	}

	return geometry{Type: "GeometryCollection", Geometries: members}, true, nil
}

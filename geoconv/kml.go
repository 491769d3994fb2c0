package geoconv

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/code19m/errx"
)

// kmlRoot mirrors the subset of the KML schema the converter understands.
// Placemarks may appear directly under <kml> or nested arbitrarily deep
// inside <Document> and <Folder> containers.
type kmlRoot struct {
	XMLName    xml.Name       `xml:"kml"`
	Document   *kmlContainer  `xml:"Document"`
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlContainer struct {
	Documents  []kmlContainer `xml:"Document"`
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name          string            `xml:"name"`
	Description   string            `xml:"description"`
	Point         *kmlPoint         `xml:"Point"`
	LineString    *kmlLineString    `xml:"LineString"`
	Polygon       *kmlPolygon       `xml:"Polygon"`
	MultiGeometry *kmlMultiGeometry `xml:"MultiGeometry"`
}

type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlLineString struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	OuterBoundary   kmlBoundary   `xml:"outerBoundaryIs"`
	InnerBoundaries []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlBoundary struct {
	LinearRing kmlLinearRing `xml:"LinearRing"`
}

type kmlLinearRing struct {
	Coordinates string `xml:"coordinates"`
}

type kmlMultiGeometry struct {
	Points      []kmlPoint      `xml:"Point"`
	LineStrings []kmlLineString `xml:"LineString"`
	Polygons    []kmlPolygon    `xml:"Polygon"`
}

// collectPlacemarks flattens the container tree into a single slice,
// preserving document order within each container level.
func (r *kmlRoot) collectPlacemarks() []kmlPlacemark {
	out := make([]kmlPlacemark, 0, len(r.Placemarks))
	out = append(out, r.Placemarks...)
	if r.Document != nil {
		out = append(out, collectFromContainer(*r.Document)...)
	}
	for _, f := range r.Folders {
		out = append(out, collectFromContainer(f)...)
	}
	return out
}

func collectFromContainer(c kmlContainer) []kmlPlacemark {
	out := make([]kmlPlacemark, 0, len(c.Placemarks))
	out = append(out, c.Placemarks...)
	for _, d := range c.Documents {
		out = append(out, collectFromContainer(d)...)
	}
	for _, f := range c.Folders {
		out = append(out, collectFromContainer(f)...)
	}
	return out
}

// parsePositions parses a KML coordinates string: whitespace-separated
// tuples of "lon,lat[,alt]". Each position keeps exactly the components
// the document carries (2 or 3).
func parsePositions(raw string) ([][]float64, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, errx.New("empty coordinates element", errx.WithCode(CodeInvalidKML), errx.WithType(errx.T_Validation))
	}

	positions := make([][]float64, 0, len(fields))
	for _, tuple := range fields {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, errx.New(
				"malformed coordinate tuple",
				errx.WithCode(CodeInvalidKML),
				errx.WithType(errx.T_Validation),
				errx.WithDetails(errx.D{"tuple": tuple}),
			)
		}

		pos := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, errx.New(
					"malformed coordinate value",
					errx.WithCode(CodeInvalidKML),
					errx.WithType(errx.T_Validation),
					errx.WithDetails(errx.D{"tuple": tuple}),
				)
			}
			pos = append(pos, v)
		}
		positions = append(positions, pos)
	}

	return positions, nil
}

// parseSingle parses a coordinates string expected to hold exactly one position.
func parseSingle(raw string) ([]float64, error) {
	positions, err := parsePositions(raw)
	if err != nil {
		return nil, err
	}
	return positions[0], nil
}

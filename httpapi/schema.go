package httpapi

import (
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/geodepot/geodepot/intake"
	"github.com/geodepot/geodepot/pagination"
	"github.com/geodepot/geodepot/record"
)

// FileCharacteristics is the public shape of a stored file. URL is
// built from the configured public base URL at response time; it is
// never persisted.
type FileCharacteristics struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

func newFileCharacteristics(baseURL string, rec record.FileRecord) FileCharacteristics {
	return FileCharacteristics{
		Name:        rec.Name,
		ContentType: rec.ContentType,
		Size:        rec.Size,
		URL:         fileURL(baseURL, rec),
	}
}

// fileURL points at the retrieval endpoint of the record, so returned
// links resolve through the same lookup rules as any other request.
func fileURL(baseURL string, rec record.FileRecord) string {
	return strings.TrimRight(baseURL, "/") +
		basePath + "/files/" + rec.Kind.String() + "/" + url.PathEscape(rec.Name)
}

func newFileCharacteristicsList(baseURL string, recs []record.FileRecord) []FileCharacteristics {
	return lo.Map(recs, func(rec record.FileRecord, _ int) FileCharacteristics {
		return newFileCharacteristics(baseURL, rec)
	})
}

type uploadFilesResponse struct {
	Msg        string                `json:"msg"`
	GeoFiles   []FileCharacteristics `json:"geo_files"`
	ImageFiles []FileCharacteristics `json:"image_files"`
	Errors     []intake.UploadError  `json:"errors"`
}

func newUploadFilesResponse(baseURL string, res *intake.UploadResult) uploadFilesResponse {
	return uploadFilesResponse{
		Msg:        "Files uploaded successfully",
		GeoFiles:   newFileCharacteristicsList(baseURL, res.GeoFiles),
		ImageFiles: newFileCharacteristicsList(baseURL, res.ImageFiles),
		Errors:     res.Errors,
	}
}

type messageResponse struct {
	Msg string `json:"msg"`
}

type institutionFilesResponse struct {
	pagination.Response
	Files []FileCharacteristics `json:"files"`
}

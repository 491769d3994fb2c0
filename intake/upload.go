package intake

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/geoconv"
	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/record"
)

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// UploadError describes why one file of a batch was not stored.
type UploadError struct {
	FileName string `json:"file_name"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// UploadResult carries successes per kind in request order plus
// per-file failures. A batch where every file failed is still a valid
// result with empty success lists.
type UploadResult struct {
	GeoFiles   []record.FileRecord
	ImageFiles []record.FileRecord
	Errors     []UploadError
}

// Upload stores a batch of files for an institution. Files are
// processed concurrently under the configured limit; each file succeeds
// or fails independently and the result keeps the request order.
func (s *Service) Upload(ctx context.Context, institutionID uuid.UUID, files []UploadFile) (*UploadResult, error) {
	exists, err := s.institutions.Exists(ctx, institution.Filter{ID: institutionID})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if !exists {
		return nil, errx.New(
			"institution not found",
			errx.WithCode(institution.CodeInstitutionNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"institution_id": institutionID.String()}),
		)
	}

	stored := make([]*record.FileRecord, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxParallelUploads)
	for i, file := range files {
		g.Go(func() error {
			rec, err := s.storeOne(gctx, institutionID, file)
			if err != nil {
				// sibling files keep going
				failures[i] = err
				return nil
			}
			stored[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		s.logCancelledBatch(ctx, files, stored, failures)
	}

	result := &UploadResult{
		GeoFiles:   []record.FileRecord{},
		ImageFiles: []record.FileRecord{},
		Errors:     []UploadError{},
	}
	for i := range files {
		switch {
		case failures[i] != nil:
			result.Errors = append(result.Errors, newUploadError(files[i].Name, failures[i]))
		case stored[i].Kind == filekind.Geo:
			result.GeoFiles = append(result.GeoFiles, *stored[i])
		default:
			result.ImageFiles = append(result.ImageFiles, *stored[i])
		}
	}

	return result, nil
}

// storeOne runs the intake pipeline for a single file: validate,
// classify, convert KML, duplicate fast path, artifact write, then
// record plus event in one transaction with a compensating artifact
// delete when that transaction fails.
func (s *Service) storeOne(ctx context.Context, institutionID uuid.UUID, file UploadFile) (*record.FileRecord, error) {
	if err := validateFileName(file.Name); err != nil {
		return nil, err
	}
	if file.Size == 0 {
		return nil, emptyFileErr(file.Name)
	}

	kind, ok := filekind.Detect(file.ContentType)
	if !ok {
		return nil, invalidTypeErr(file.ContentType)
	}

	name := file.Name
	contentType := file.ContentType
	content := file.Content

	if kind == filekind.Geo && isKML(file.ContentType, file.Name) {
		converted, err := convertKMLContent(content)
		if err != nil {
			return nil, err
		}
		name = geoJSONName(name)
		contentType = filekind.ContentTypeGeoJSON
		content = bytes.NewReader(converted)
	}

	// fast-path duplicate rejection before any storage write; the
	// unique constraint behind Create stays authoritative
	exists, err := s.records.Exists(ctx, record.Filter{
		InstitutionID: institutionID,
		Kind:          kind,
		Name:          name,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if exists {
		return nil, duplicateErr(name)
	}

	storagePath := record.StoragePathFor(institutionID, kind, name)
	info, err := s.store.Put(ctx, storagePath, content)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeStorageIOFailure))
	}

	rec := &record.FileRecord{
		InstitutionID: institutionID,
		Name:          name,
		Kind:          kind,
		ContentType:   contentType,
		Size:          info.Size,
		StoragePath:   storagePath,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		created, txErr := tx.Records().Create(ctx, rec)
		if txErr != nil {
			return errx.Wrap(txErr)
		}
		rec = created
		return tx.PublishEvent(ctx, s.cfg.EventsTopic, storagePath, newFileEvent(EventFileUploaded, rec))
	})
	if err != nil {
		s.compensateArtifact(ctx, storagePath, err)
		return nil, err
	}

	return rec, nil
}

// compensateArtifact removes a just-written artifact after the record
// write failed, so storage holds no orphan artifacts. Losing the
// duplicate race is the exception: the path now belongs to the record
// that won, so the artifact must stay.
func (s *Service) compensateArtifact(ctx context.Context, storagePath string, cause error) {
	if errx.IsCodeIn(cause, record.CodeDuplicateFile) {
		s.logger.WithContext(ctx).With(
			"storage_path", storagePath,
		).Warn("Concurrent duplicate upload lost the race; artifact left to the winning record")
		return
	}

	if err := s.store.Delete(ctx, storagePath); err != nil && !blobstore.IsNotFound(err) {
		s.logger.WithContext(ctx).With(
			"storage_path", storagePath,
			"cause", cause,
		).Errorx(err)
	}
}

func (s *Service) logCancelledBatch(ctx context.Context, files []UploadFile, stored []*record.FileRecord, failures []error) {
	completed := make([]string, 0, len(files))
	interrupted := make([]string, 0, len(files))
	for i := range files {
		if stored[i] != nil {
			completed = append(completed, stored[i].Name)
		} else if failures[i] != nil {
			interrupted = append(interrupted, files[i].Name)
		}
	}

	s.logger.WithContext(ctx).With(
		"completed", completed,
		"failed_or_skipped", interrupted,
	).Warn("Upload batch interrupted by cancellation; partial result returned")
}

func newUploadError(name string, err error) UploadError {
	e := errx.AsErrorX(err)
	return UploadError{
		FileName: name,
		Code:     e.Code(),
		Detail:   e.Error(),
	}
}

func validateFileName(name string) error {
	var reason string
	switch {
	case name == "":
		reason = "file name is empty"
	case strings.ContainsAny(name, `/\`):
		reason = "file name contains path separators"
	case strings.Contains(name, ".."):
		reason = "file name contains a traversal sequence"
	case path.Ext(name) == "":
		reason = "file name has no extension"
	}
	if reason == "" {
		return nil
	}

	return errx.New(reason,
		errx.WithCode(CodeInvalidFileName),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"file_name": name}),
	)
}

func emptyFileErr(name string) error {
	return errx.New("file has no content",
		errx.WithCode(CodeEmptyFile),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{"file_name": name}),
	)
}

func invalidTypeErr(contentType string) error {
	return errx.New("content type is not accepted",
		errx.WithCode(CodeInvalidFileType),
		errx.WithType(errx.T_Validation),
		errx.WithDetails(errx.D{
			"content_type":   contentType,
			"accepted_geo":   strings.Join(filekind.AcceptedContentTypes(filekind.Geo), ", "),
			"accepted_image": strings.Join(filekind.AcceptedContentTypes(filekind.Image), ", "),
		}),
	)
}

func duplicateErr(name string) error {
	return errx.New("a file with this name already exists for the institution",
		errx.WithCode(record.CodeDuplicateFile),
		errx.WithType(errx.T_Conflict),
		errx.WithDetails(errx.D{"file_name": name}),
	)
}

// isKML reports whether the file declares KML content, by content type
// or by name suffix.
func isKML(contentType, name string) bool {
	if contentType == filekind.ContentTypeKML {
		return true
	}
	return strings.HasSuffix(strings.ToLower(name), ".kml")
}

// geoJSONName swaps the extension for .geojson, matching the converted
// content the artifact will hold.
func geoJSONName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".geojson"
}

func convertKMLContent(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return geoconv.ConvertKML(raw)
}

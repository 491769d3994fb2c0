// Package intake implements the file intake orchestrator: upload,
// retrieve, update and delete of institution-scoped geo and image
// files. It owns the coupling between metadata records and stored
// artifacts, so the two never diverge.
package intake

import (
	"bytes"
	"context"
	"io"

	"github.com/code19m/errx"
	"github.com/google/uuid"

	"github.com/geodepot/geodepot/blobstore"
	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/geoconv"
	"github.com/geodepot/geodepot/institution"
	log "github.com/geodepot/geodepot/observability/logger"
	"github.com/geodepot/geodepot/record"
)

// Service orchestrates file intake. It is the sole writer of file
// storage state: no other component mutates records or artifacts.
type Service struct {
	cfg          Config
	logger       log.Logger
	records      record.Repo
	institutions institution.Repo
	store        blobstore.Store
	uow          UnitOfWork
}

func NewService(
	cfg Config,
	logger log.Logger,
	records record.Repo,
	institutions institution.Repo,
	store blobstore.Store,
	uow UnitOfWork,
) *Service {
	return &Service{
		cfg:          cfg,
		logger:       logger.Named("intake"),
		records:      records,
		institutions: institutions,
		store:        store,
		uow:          uow,
	}
}

// RetrieveGeo returns the parsed GeoJSON document of a stored geo file.
// institutionID narrows the lookup and may be uuid.Nil when the name is
// unambiguous across institutions; an ambiguous name is an error, never
// a guess.
func (s *Service) RetrieveGeo(ctx context.Context, institutionID uuid.UUID, name string) (map[string]any, error) {
	rec, err := s.records.Get(ctx, record.Filter{
		InstitutionID: institutionID,
		Kind:          filekind.Geo,
		Name:          name,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	obj, err := s.store.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, s.artifactError(ctx, rec, err)
	}
	defer obj.Content.Close()

	data, err := io.ReadAll(obj.Content)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeStorageIOFailure))
	}

	doc, err := geoconv.ParseGeoJSON(data)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return doc, nil
}

// ImageFile is a stored image opened for streaming.
// The caller must close Content.
type ImageFile struct {
	Record  record.FileRecord
	Content io.ReadCloser
}

// RetrieveImage opens a stored image for streaming with its recorded
// content type. Lookup scoping works as in RetrieveGeo.
func (s *Service) RetrieveImage(ctx context.Context, institutionID uuid.UUID, name string) (*ImageFile, error) {
	rec, err := s.records.Get(ctx, record.Filter{
		InstitutionID: institutionID,
		Kind:          filekind.Image,
		Name:          name,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	obj, err := s.store.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, s.artifactError(ctx, rec, err)
	}

	return &ImageFile{Record: *rec, Content: obj.Content}, nil
}

// Update replaces the content of an existing file in place. The new
// content must classify into the record's kind; the artifact overwrite
// is atomic and the record refresh publishes a file.updated event.
func (s *Service) Update(ctx context.Context, institutionID uuid.UUID, kind filekind.Kind, name string, file UploadFile) (*record.FileRecord, error) {
	rec, err := s.records.Get(ctx, record.Filter{
		InstitutionID: institutionID,
		Kind:          kind,
		Name:          name,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	newKind, ok := filekind.Detect(file.ContentType)
	if !ok {
		return nil, invalidTypeErr(file.ContentType)
	}
	if newKind != rec.Kind {
		return nil, errx.New(
			"replacement content classifies into a different kind",
			errx.WithCode(CodeFileTypeMismatch),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{
				"stored_kind":   rec.Kind.String(),
				"detected_kind": newKind.String(),
			}),
		)
	}
	if file.Size == 0 {
		return nil, emptyFileErr(rec.Name)
	}

	content := file.Content
	contentType := file.ContentType

	// KML replacements are converted exactly like uploads, so stored
	// geo artifacts stay parseable at retrieve time.
	if rec.Kind == filekind.Geo && isKML(file.ContentType, file.Name) {
		converted, convErr := convertKMLContent(content)
		if convErr != nil {
			return nil, convErr
		}
		content = bytes.NewReader(converted)
		contentType = filekind.ContentTypeGeoJSON
	}

	info, err := s.store.Put(ctx, rec.StoragePath, content)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeStorageIOFailure))
	}

	rec.ContentType = contentType
	rec.Size = info.Size

	var updated *record.FileRecord
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		var txErr error
		updated, txErr = tx.Records().Update(ctx, rec)
		if txErr != nil {
			return errx.Wrap(txErr)
		}
		return tx.PublishEvent(ctx, s.cfg.EventsTopic, rec.StoragePath, newFileEvent(EventFileUpdated, updated))
	})
	if err != nil {
		// the artifact is already replaced and the previous bytes are
		// gone; only the record refresh can be retried
		s.logger.WithContext(ctx).With("storage_path", rec.StoragePath).Errorx(err)
		return nil, err
	}

	return updated, nil
}

// Delete removes a file's record and artifact. Both sides are attempted
// even when the first fails; a missing artifact is tolerated, and any
// partial outcome is reported, never silent.
func (s *Service) Delete(ctx context.Context, institutionID uuid.UUID, kind filekind.Kind, name string) error {
	rec, err := s.records.Get(ctx, record.Filter{
		InstitutionID: institutionID,
		Kind:          kind,
		Name:          name,
	})
	if err != nil {
		return errx.Wrap(err)
	}

	var artifactErr error
	if err := s.store.Delete(ctx, rec.StoragePath); err != nil {
		if blobstore.IsNotFound(err) {
			s.logger.WithContext(ctx).With(
				"record_id", rec.ID,
				"storage_path", rec.StoragePath,
			).Warn("Artifact already missing during delete")
		} else {
			artifactErr = err
		}
	}

	recordErr := s.uow.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Records().Delete(ctx, rec); err != nil {
			return errx.Wrap(err)
		}
		return tx.PublishEvent(ctx, s.cfg.EventsTopic, rec.StoragePath, newFileEvent(EventFileDeleted, rec))
	})

	switch {
	case artifactErr != nil && recordErr != nil:
		return errx.New(
			"file delete failed on both artifact and record",
			errx.WithCode(CodeStorageIOFailure),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{
				"artifact_error": artifactErr.Error(),
				"record_error":   recordErr.Error(),
				"storage_path":   rec.StoragePath,
			}),
		)
	case artifactErr != nil:
		return errx.Wrap(artifactErr,
			errx.WithCode(CodeStorageIOFailure),
			errx.WithDetails(errx.D{
				"partial_state": "record removed, artifact remains",
				"storage_path":  rec.StoragePath,
			}),
		)
	case recordErr != nil:
		return errx.Wrap(recordErr,
			errx.WithDetails(errx.D{
				"partial_state": "artifact removed, record remains",
				"storage_path":  rec.StoragePath,
			}),
		)
	}

	return nil
}

// artifactError classifies a storage read failure for a live record.
// A missing artifact is an integrity fault: metadata says the file
// exists, storage disagrees.
func (s *Service) artifactError(ctx context.Context, rec *record.FileRecord, err error) error {
	if blobstore.IsNotFound(err) {
		s.logger.WithContext(ctx).With(
			"record_id", rec.ID,
			"storage_path", rec.StoragePath,
		).Error("Artifact missing for live file record")

		return errx.New(
			"artifact missing for live file record",
			errx.WithCode(CodeFileArtifactMissing),
			errx.WithType(errx.T_Internal),
			errx.WithDetails(errx.D{
				"record_id":    rec.ID.String(),
				"storage_path": rec.StoragePath,
			}),
		)
	}

	return errx.Wrap(err, errx.WithCode(CodeStorageIOFailure))
}

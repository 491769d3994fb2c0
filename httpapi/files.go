package httpapi

import (
	"mime/multipart"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/intake"
)

const (
	codeInvalidMultipartForm = "INVALID_MULTIPART_FORM"
	codeInvalidInstitutionID = "INVALID_INSTITUTION_ID"
	codeNoFilesProvided      = "NO_FILES_PROVIDED"
	codeMissingFilePart      = "MISSING_FILE_PART"
)

// uploadFiles handles POST /files: a multipart form with an
// institution_id field and one or more parts named "files". Each part
// succeeds or fails on its own; the response carries both outcomes.
func (h *Handler) uploadFiles(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return errx.New(
			"request body must be multipart/form-data",
			errx.WithCode(codeInvalidMultipartForm),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"parse_error": err.Error()}),
		)
	}

	institutionID, err := formInstitutionID(form)
	if err != nil {
		return err
	}

	parts := form.File["files"]
	if len(parts) == 0 {
		return errx.New(
			"at least one part named 'files' is required",
			errx.WithCode(codeNoFilesProvided),
			errx.WithType(errx.T_Validation),
		)
	}

	files := make([]intake.UploadFile, 0, len(parts))
	for _, part := range parts {
		content, err := part.Open()
		if err != nil {
			return errx.Wrap(err,
				errx.WithCode(codeInvalidMultipartForm),
				errx.WithType(errx.T_Validation),
				errx.WithDetails(errx.D{"file_name": part.Filename}),
			)
		}
		defer content.Close()

		files = append(files, intake.UploadFile{
			Name:        part.Filename,
			ContentType: part.Header.Get(fiber.HeaderContentType),
			Size:        part.Size,
			Content:     content,
		})
	}

	res, err := h.intake.Upload(c.UserContext(), institutionID, files)
	if err != nil {
		return errx.Wrap(err)
	}

	return c.Status(fiber.StatusCreated).JSON(newUploadFilesResponse(h.cfg.PublicBaseURL, res))
}

// getFile handles GET /files/:file_type/:file_name. Geo files come
// back as the parsed GeoJSON document, images as a byte stream with
// the recorded content type.
func (h *Handler) getFile(c *fiber.Ctx) error {
	kind, name, err := parseFileRef(c)
	if err != nil {
		return err
	}
	scope, err := institutionScope(c)
	if err != nil {
		return err
	}

	if kind == filekind.Geo {
		doc, err := h.intake.RetrieveGeo(c.UserContext(), scope, name)
		if err != nil {
			return errx.Wrap(err)
		}
		return c.JSON(doc)
	}

	img, err := h.intake.RetrieveImage(c.UserContext(), scope, name)
	if err != nil {
		return errx.Wrap(err)
	}

	// fasthttp closes the stream after the response is sent
	c.Set(fiber.HeaderContentType, img.Record.ContentType)
	return c.SendStream(img.Content, int(img.Record.Size))
}

// updateFile handles PUT /files/:file_type/:file_name: a multipart
// form with a single part named "file" replacing the stored content.
func (h *Handler) updateFile(c *fiber.Ctx) error {
	kind, name, err := parseFileRef(c)
	if err != nil {
		return err
	}
	scope, err := institutionScope(c)
	if err != nil {
		return err
	}

	part, err := c.FormFile("file")
	if err != nil {
		return errx.New(
			"a multipart part named 'file' is required",
			errx.WithCode(codeMissingFilePart),
			errx.WithType(errx.T_Validation),
		)
	}
	content, err := part.Open()
	if err != nil {
		return errx.Wrap(err,
			errx.WithCode(codeInvalidMultipartForm),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"file_name": part.Filename}),
		)
	}
	defer content.Close()

	rec, err := h.intake.Update(c.UserContext(), scope, kind, name, intake.UploadFile{
		Name:        part.Filename,
		ContentType: part.Header.Get(fiber.HeaderContentType),
		Size:        part.Size,
		Content:     content,
	})
	if err != nil {
		return errx.Wrap(err)
	}

	return c.JSON(newFileCharacteristics(h.cfg.PublicBaseURL, *rec))
}

// deleteFile handles DELETE /files/:file_type/:file_name.
func (h *Handler) deleteFile(c *fiber.Ctx) error {
	kind, name, err := parseFileRef(c)
	if err != nil {
		return err
	}
	scope, err := institutionScope(c)
	if err != nil {
		return err
	}

	if err := h.intake.Delete(c.UserContext(), scope, kind, name); err != nil {
		return errx.Wrap(err)
	}

	return c.JSON(messageResponse{Msg: name + " deleted successfully"})
}

// parseFileRef reads the kind and name path segments shared by the
// single-file endpoints.
func parseFileRef(c *fiber.Ctx) (filekind.Kind, string, error) {
	kind, ok := filekind.Parse(c.Params("file_type"))
	if !ok {
		return "", "", errx.New(
			"file type must be 'geo' or 'image'",
			errx.WithCode(intake.CodeInvalidFileType),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"file_type": c.Params("file_type")}),
		)
	}
	return kind, c.Params("file_name"), nil
}

// institutionScope reads the optional institution_id query parameter.
// Absent means unscoped: the lookup spans all institutions and an
// ambiguous name is the caller's problem to disambiguate.
func institutionScope(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Query("institution_id")
	if raw == "" {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errx.New(
			"institution_id is not a valid UUID",
			errx.WithCode(codeInvalidInstitutionID),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"institution_id": raw}),
		)
	}
	return id, nil
}

func formInstitutionID(form *multipart.Form) (uuid.UUID, error) {
	values := form.Value["institution_id"]
	if len(values) == 0 || values[0] == "" {
		return uuid.Nil, errx.New(
			"institution_id form field is required",
			errx.WithCode(codeInvalidInstitutionID),
			errx.WithType(errx.T_Validation),
		)
	}

	id, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, errx.New(
			"institution_id is not a valid UUID",
			errx.WithCode(codeInvalidInstitutionID),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"institution_id": values[0]}),
		)
	}
	return id, nil
}

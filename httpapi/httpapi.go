// Package httpapi exposes the file intake and institution services
// over HTTP. Handlers stay thin: decode the request, delegate to a
// service, encode the result. Domain rules live in the services and
// error responses are produced by the server's error handler from the
// errx values returned here.
package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/geodepot/geodepot/http/server/forward"
	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/intake"
	"github.com/geodepot/geodepot/record"
)

// basePath is the mount point of the API. File URLs in responses are
// built from it, so the links resolve through the same routes.
const basePath = "/api/v1"

// Handler bundles the services the API delegates to.
type Handler struct {
	cfg          Config
	intake       *intake.Service
	institutions *institution.Service
	records      record.Repo
}

func NewHandler(
	cfg Config,
	intakeSvc *intake.Service,
	institutions *institution.Service,
	records record.Repo,
) *Handler {
	return &Handler{
		cfg:          cfg,
		intake:       intakeSvc,
		institutions: institutions,
		records:      records,
	}
}

// RegisterRoutes mounts the API under /api/v1.
//
// File endpoints are hand-written handlers: they deal in multipart
// bodies and streamed responses, which the forward helpers do not
// cover. Institution endpoints are plain JSON and go through
// forward.ToUseCase.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	v1 := r.Group(basePath)

	files := v1.Group("/files")
	files.Post("/", h.uploadFiles)
	files.Get("/:file_type/:file_name", h.getFile)
	files.Put("/:file_type/:file_name", h.updateFile)
	files.Delete("/:file_type/:file_name", h.deleteFile)

	institutions := v1.Group("/institutions")
	institutions.Post("/", forward.ToUseCase(h.createInstitution))
	institutions.Get("/", forward.ToUseCase(h.listInstitutions))
	institutions.Get("/:id", forward.ToUseCase(h.getInstitution))
	institutions.Put("/:id", forward.ToUseCase(h.updateInstitution))
	institutions.Delete("/:id", forward.ToUseCaseNoResp(h.deleteInstitution))
	institutions.Get("/:id/files", forward.ToUseCase(h.listInstitutionFiles))
}

package httpapi

import (
	"context"

	"github.com/code19m/errx"
	"github.com/google/uuid"

	"github.com/geodepot/geodepot/institution"
	"github.com/geodepot/geodepot/pagination"
	"github.com/geodepot/geodepot/record"
	"github.com/geodepot/geodepot/sorter"
)

type createInstitutionRequest struct {
	Name             string `json:"name"                     validate:"required,min=2,max=255"`
	Country          string `json:"country"                  validate:"required"`
	Address          string `json:"address"                  validate:"required"`
	ChapterName      string `json:"chapter_name"             validate:"required"`
	OSMMapping       int    `json:"osm_mapping"              validate:"gte=0"`
	ContributorName  string `json:"contributor_full_name"    validate:"required"`
	ContributorEmail string `json:"contributor_email"        validate:"required,email"`
	ContributorPhone string `json:"contributor_phone_number" validate:"required"`
	RoleInChapter    string `json:"role_in_chapter"`
}

func (h *Handler) createInstitution(ctx context.Context, req *createInstitutionRequest) (*institution.Institution, error) {
	inst, err := h.institutions.Create(ctx, &institution.Institution{
		Name:             req.Name,
		Country:          req.Country,
		Address:          req.Address,
		ChapterName:      req.ChapterName,
		OSMMapping:       req.OSMMapping,
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
		ContributorPhone: req.ContributorPhone,
		RoleInChapter:    req.RoleInChapter,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return inst, nil
}

type institutionIDRequest struct {
	ID uuid.UUID `params:"id" json:"-" validate:"required"`
}

func (h *Handler) getInstitution(ctx context.Context, req *institutionIDRequest) (*institution.Institution, error) {
	return h.institutions.GetByID(ctx, req.ID)
}

func (h *Handler) deleteInstitution(ctx context.Context, req *institutionIDRequest) error {
	return h.institutions.Delete(ctx, req.ID)
}

type listInstitutionsRequest struct {
	pagination.Params

	Name string `query:"name" json:"-"`
	Sort string `query:"sort" json:"-"`
}

type listInstitutionsResponse struct {
	pagination.Response
	Institutions []institution.Institution `json:"institutions"`
}

func (h *Handler) listInstitutions(ctx context.Context, req *listInstitutionsRequest) (*listInstitutionsResponse, error) {
	req.Normalize(pagination.DefaultConfig())
	limit, offset := req.ToLimitOffset()

	sortOpts := sorter.MakeFromStr(req.Sort, institution.AllowedSortFields...)
	if len(sortOpts) == 0 {
		sortOpts = sorter.Make(sorter.Opt{Field: "name", Dir: sorter.Asc})
	}

	items, total, err := h.institutions.List(ctx, institution.Filter{
		Name:   req.Name,
		Sort:   sortOpts,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &listInstitutionsResponse{
		Response:     req.NewResponse(int64(total)),
		Institutions: items,
	}, nil
}

type updateInstitutionRequest struct {
	ID uuid.UUID `params:"id" json:"-" validate:"required"`

	Name             *string `json:"name"                     validate:"omitempty,min=2,max=255"`
	Country          *string `json:"country"                  validate:"omitempty,min=1"`
	Address          *string `json:"address"                  validate:"omitempty,min=1"`
	ChapterName      *string `json:"chapter_name"             validate:"omitempty,min=1"`
	OSMMapping       *int    `json:"osm_mapping"              validate:"omitempty,gte=0"`
	ContributorName  *string `json:"contributor_full_name"    validate:"omitempty,min=1"`
	ContributorEmail *string `json:"contributor_email"        validate:"omitempty,email"`
	ContributorPhone *string `json:"contributor_phone_number" validate:"omitempty,min=1"`
	RoleInChapter    *string `json:"role_in_chapter"`
}

func (h *Handler) updateInstitution(ctx context.Context, req *updateInstitutionRequest) (*institution.Institution, error) {
	inst, err := h.institutions.Update(ctx, req.ID, institution.UpdateParams{
		Name:             req.Name,
		Country:          req.Country,
		Address:          req.Address,
		ChapterName:      req.ChapterName,
		OSMMapping:       req.OSMMapping,
		ContributorName:  req.ContributorName,
		ContributorEmail: req.ContributorEmail,
		ContributorPhone: req.ContributorPhone,
		RoleInChapter:    req.RoleInChapter,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return inst, nil
}

type listInstitutionFilesRequest struct {
	ID uuid.UUID `params:"id" json:"-" validate:"required"`

	pagination.Params

	Sort string `query:"sort" json:"-"`
}

func (h *Handler) listInstitutionFiles(ctx context.Context, req *listInstitutionFilesRequest) (*institutionFilesResponse, error) {
	// an unknown institution is a 404, not an empty page
	if _, err := h.institutions.GetByID(ctx, req.ID); err != nil {
		return nil, errx.Wrap(err)
	}

	req.Normalize(pagination.DefaultConfig())
	limit, offset := req.ToLimitOffset()

	sortOpts := sorter.MakeFromStr(req.Sort, record.AllowedSortFields...)
	if len(sortOpts) == 0 {
		sortOpts = sorter.Make(sorter.Opt{Field: "created_at", Dir: sorter.Desc})
	}

	items, total, err := h.records.ListWithCount(ctx, record.Filter{
		InstitutionID: req.ID,
		Sort:          sortOpts,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &institutionFilesResponse{
		Response: req.NewResponse(int64(total)),
		Files:    newFileCharacteristicsList(h.cfg.PublicBaseURL, items),
	}, nil
}

// Package institution manages the tenants file storage is scoped by.
package institution

import (
	"github.com/geodepot/geodepot/pg"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Institution is a tenant owning stored files.
type Institution struct {
	bun.BaseModel `bun:"table:institutions,alias:ins"`

	ID               uuid.UUID `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	Name             string    `bun:"name,notnull"                                       json:"name"`
	Country          string    `bun:"country,notnull"                                    json:"country"`
	Address          string    `bun:"address,notnull"                                    json:"address"`
	ChapterName      string    `bun:"chapter_name,notnull"                               json:"chapter_name"`
	OSMMapping       int       `bun:"osm_mapping,notnull,default:0"                      json:"osm_mapping"`
	ContributorName  string    `bun:"contributor_full_name,notnull"                      json:"contributor_full_name"`
	ContributorEmail string    `bun:"contributor_email,notnull"                          json:"contributor_email"`
	ContributorPhone string    `bun:"contributor_phone_number,notnull"                   json:"contributor_phone_number"`
	RoleInChapter    string    `bun:"role_in_chapter,nullzero"                           json:"role_in_chapter,omitempty"`

	pg.Timestamps
}

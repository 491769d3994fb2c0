// Package record defines the file record model and its repository.
//
// A file record is the metadata side of a stored artifact: one row per
// (institution, kind, name), carrying the derived storage path the
// artifact lives at. The unique constraint on that triple is the
// authoritative duplicate guard.
package record

import (
	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/pg"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FileRecord describes one stored artifact.
type FileRecord struct {
	bun.BaseModel `bun:"table:file_records,alias:fr"`

	ID            uuid.UUID     `bun:"id,pk,type:uuid,nullzero,default:gen_random_uuid()" json:"id"`
	InstitutionID uuid.UUID     `bun:"institution_id,type:uuid,notnull"                   json:"institution_id"`
	Name          string        `bun:"name,notnull"                                       json:"name"`
	Kind          filekind.Kind `bun:"kind,notnull"                                       json:"kind"`
	ContentType   string        `bun:"content_type,notnull"                               json:"content_type"`
	Size          int64         `bun:"size,notnull"                                       json:"size"`
	StoragePath   string        `bun:"storage_path,notnull"                               json:"storage_path"`

	pg.Timestamps
}

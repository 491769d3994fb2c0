package record

import (
	"path"

	"github.com/geodepot/geodepot/filekind"
	"github.com/google/uuid"
)

// StoragePathFor derives the artifact path for a record key.
// The layout is <institution_id>/<kind>/<name>: one directory per
// institution with one subarea per kind, so paths cannot collide across
// institutions or kinds. The path is derived, never stored independently
// of the key.
func StoragePathFor(institutionID uuid.UUID, kind filekind.Kind, name string) string {
	return path.Join(institutionID.String(), kind.String(), name)
}

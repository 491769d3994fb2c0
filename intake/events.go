package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/geodepot/geodepot/filekind"
	"github.com/geodepot/geodepot/record"
)

// Event types published on the file lifecycle topic.
const (
	EventFileUploaded = "file.uploaded"
	EventFileUpdated  = "file.updated"
	EventFileDeleted  = "file.deleted"
)

// FileEvent is the payload of a file lifecycle event. Events are
// partitioned by storage path, so the history of one artifact stays
// ordered for consumers.
type FileEvent struct {
	Event         string        `json:"event"`
	RecordID      uuid.UUID     `json:"record_id"`
	InstitutionID uuid.UUID     `json:"institution_id"`
	Kind          filekind.Kind `json:"kind"`
	Name          string        `json:"name"`
	ContentType   string        `json:"content_type"`
	Size          int64         `json:"size"`
	OccurredAt    time.Time     `json:"occurred_at"`
}

func newFileEvent(event string, rec *record.FileRecord) FileEvent {
	return FileEvent{
		Event:         event,
		RecordID:      rec.ID,
		InstitutionID: rec.InstitutionID,
		Kind:          rec.Kind,
		Name:          rec.Name,
		ContentType:   rec.ContentType,
		Size:          rec.Size,
		OccurredAt:    time.Now().UTC(),
	}
}

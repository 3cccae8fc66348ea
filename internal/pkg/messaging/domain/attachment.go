package messaging

// Attachment stores the metadata reference for a blob held by the external
// store; the bytes themselves never pass through this core.
type Attachment struct {
	ID         int64  `db:"id"`
	UploaderID string `db:"uploader_id"`
	Name       string `db:"name"`
	Mime       string `db:"mime"`
	Size       int64  `db:"size"`
	StorageKey string `db:"storage_key"`
}

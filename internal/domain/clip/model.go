package clip

// ContentType тип одного блока содержимого записи буфера обмена
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentLink  ContentType = "link"
	ContentImage ContentType = "image"
	ContentFile  ContentType = "file"
)

// Valid проверяет, что тип содержимого входит в список известных
func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentLink, ContentImage, ContentFile:
		return true
	}
	return false
}

// Content один блок содержимого записи. Запись может содержать
// несколько блоков разных типов (текст + ссылка и т.п.)
type Content struct {
	Type ContentType `cbor:"type" json:"type"`
	Data []byte      `cbor:"data" json:"data"`
}

// Clip запись буфера обмена. SyncID стабилен между обновлениями одной
// и той же логической записи, временные метки хранятся в unix-миллисекундах.
type Clip struct {
	SyncID       string    `cbor:"sync_id" json:"sync_id"`
	DeviceID     string    `cbor:"device_id" json:"device_id"`
	Title        string    `cbor:"title" json:"title"`
	SourceApp    string    `cbor:"source_app" json:"source_app"`
	CreatedAt    int64     `cbor:"created_at" json:"created_at"`
	LastCopiedAt int64     `cbor:"last_copied_at" json:"last_copied_at"`
	CopyCount    int       `cbor:"copy_count" json:"copy_count"`
	Pinned       bool      `cbor:"pinned" json:"pinned"`
	Contents     []Content `cbor:"contents" json:"contents"`
}

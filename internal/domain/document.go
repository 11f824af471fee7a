package domain

import (
	"time"
)

// Document представляет загруженный PDF. Запись в БД — единственный
// авторитетный указатель на объект в хранилище (storage_bucket + storage_path);
// путь фиксируется при загрузке и больше не пересчитывается.
type Document struct {
	ID               int64     `json:"id" db:"id"`
	FolderID         int64     `json:"folder_id" db:"folder_id"`
	Filename         string    `json:"filename" db:"filename"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	FileSize         int64     `json:"file_size" db:"file_size"`
	MIMEType         string    `json:"mime_type" db:"mime_type"`
	StoragePath      string    `json:"storage_path" db:"storage_path"`
	StorageBucket    string    `json:"storage_bucket" db:"storage_bucket"`
	PageCount        *int      `json:"page_count,omitempty" db:"page_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`

	Folder   *Folder            `json:"folder,omitempty" db:"-"`
	Metadata []DocumentMetadata `json:"metadata,omitempty" db:"-"`
	Tags     []Tag              `json:"tags,omitempty" db:"-"`
}

// DocumentUpload — один файл в пакетной загрузке.
type DocumentUpload struct {
	OriginalFilename string
	MIMEType         string
	Data             []byte
}

// UploadError описывает ошибку загрузки одного файла из пакета.
type UploadError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadResult — итог пакетной загрузки: успешные документы и ошибки
// по файлам в порядке исходного списка. Частичный успех — штатный исход,
// оба списка сериализуются всегда, даже пустые.
type UploadResult struct {
	Uploaded []Document    `json:"uploaded"`
	Errors   []UploadError `json:"errors"`
}

// DocumentMetadata — пара ключ/значение, привязанная к документу.
// Пара (document_id, key) уникальна: повторная запись перезаписывает значение.
type DocumentMetadata struct {
	ID         int64     `json:"id" db:"id"`
	DocumentID int64     `json:"document_id" db:"document_id"`
	Key        string    `json:"key" db:"key"`
	Value      string    `json:"value" db:"value"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// MetadataEntry — входная пара для записи метаданных.
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

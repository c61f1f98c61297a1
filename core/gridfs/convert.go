package gridfs

import (
	"encoding/base64"
	"time"

	"gridfs-manager/core/engine"
	"gridfs-manager/core/metadata"
	"gridfs-manager/core/utils"
)

// FileDescriptor is the public view of a stored file.
type FileDescriptor struct {
	ID         string            `json:"_id"`
	Filename   string            `json:"filename"`
	Length     int64             `json:"length"`
	ChunkSize  int32             `json:"chunkSize"`
	Metadata   metadata.Metadata `json:"metadata"`
	UploadDate time.Time         `json:"uploadDate"`
	MD5        string            `json:"md5,omitempty"`
	Buffer     *FileBuffer       `json:"buffer,omitempty"`
}

// FileBuffer carries the content of a file. Data is shared and must not be modified.
type FileBuffer struct {
	ID     string `json:"_id"`
	Data   []byte `json:"buffer"`
	Base64 string `json:"base64"`
}

// ConvertFile maps a stored record to its descriptor. A nil record yields a zero descriptor.
func ConvertFile(f *engine.File) FileDescriptor {
	if f == nil {
		return FileDescriptor{}
	}

	d := FileDescriptor{
		Filename:   f.Filename,
		Length:     f.Length,
		ChunkSize:  f.ChunkSize,
		Metadata:   f.Metadata.Clone(),
		UploadDate: f.UploadDate,
	}
	if !f.ID.IsZero() {
		d.ID = f.ID.Hex()
	}
	if f.MD5 != nil {
		d.MD5 = utils.ToString(f.MD5)
	}
	return d
}

// NewFileBuffer builds the buffer for d. The data URI uses the file's mimetype,
// or metadata.DefaultMimeType when none is recorded.
func NewFileBuffer(d FileDescriptor, data []byte) *FileBuffer {
	mimeType, ok := d.Metadata.MimeType()
	if !ok {
		mimeType = metadata.DefaultMimeType
	}
	return &FileBuffer{
		ID:     d.ID,
		Data:   data,
		Base64: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
	}
}

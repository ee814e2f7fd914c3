package filesystem

import (
	"encoding/base64"
	"time"
)

// FileMetadata is the ownership and timestamp record of one path
type FileMetadata struct {
	Path       string     `json:"path"`
	OwnerUID   uint32     `json:"uid"`
	OwnerGID   uint32     `json:"gid"`
	CreatedAt  *time.Time `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// Action names a file system mutation
type Action string

const (
	ActionCreate Action = "create"
	ActionMkdir  Action = "mkdir"
	ActionDelete Action = "delete"
	ActionCopy   Action = "copy"
	ActionMove   Action = "move"
)

// NeedsDestination reports whether the action takes a destination path
func (a Action) NeedsDestination() bool {
	return a == ActionCopy || a == ActionMove
}

// ActionRequest is the input of a file action
type ActionRequest struct {
	Source      string `json:"path"`
	Destination string `json:"dest,omitempty"`
}

// ActionOutcome reports what an action did. Changed is false when the goal
// state already held and nothing was touched.
type ActionOutcome struct {
	Action      Action `json:"action"`
	Source      string `json:"path"`
	Destination string `json:"dest,omitempty"`
	Changed     bool   `json:"changed"`
}

// Content encodings of a whole-file read
const (
	EncodingUTF8   = "utf-8"
	EncodingBase64 = "base64"
)

// Contents is a whole-file read. Content holds the bytes as text when they
// are valid UTF-8 and as standard base64 otherwise; Encoding says which.
type Contents struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
	Charset  string `json:"charset,omitempty"`
}

// Bytes returns the file bytes, decoding base64 content
func (c Contents) Bytes() ([]byte, error) {
	if c.Encoding == EncodingBase64 {
		return base64.StdEncoding.DecodeString(c.Content)
	}
	return []byte(c.Content), nil
}

// DirUsage is the summed size of the regular files below a directory
type DirUsage struct {
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`
	Files int64  `json:"files"`
}

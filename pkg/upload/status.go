package upload

import "io"

// State enumerates the lifecycle of a file field's single asynchronous
// resource. Modelling the union explicitly prevents impossible combinations
// such as a field that is simultaneously uploading and uploaded.
type State int

const (
	StateIdle State = iota
	StateUploading
	StateUploaded
	StateError
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateUploading:
		return "uploading"
	case StateUploaded:
		return "uploaded"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FileMeta describes an uploaded remote file: enough to render a preview and
// to issue a deletion request later.
type FileMeta struct {
	RemoteID    string `json:"id"`
	URL         string `json:"url"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Status is the tagged state of one file field. Meta is meaningful only in
// StateUploaded, Err only in StateError.
type Status struct {
	State State
	Meta  FileMeta
	Err   string
}

// File is the local payload handed to an upload call. Drag-and-drop ingestion
// and click-to-browse are two input paths producing the same value.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandSave      CommandType = "SAVE"
	CommandRestore   CommandType = "RESTORE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning    bool      `json:"daemon_running"`
	PID              int       `json:"pid"`
	UptimeSeconds    int64     `json:"uptime_seconds"`
	SnapshotDir      string    `json:"snapshot_dir"`
	DefaultSnapshot  string    `json:"default_snapshot"`
	StrictRestore    bool      `json:"strict_restore"`
	Hotkeys          []string  `json:"hotkeys,omitempty"`
	AutosaveInterval string    `json:"autosave_interval,omitempty"`
	LastAutosave     time.Time `json:"last_autosave,omitzero"`
	LastAutosaveErr  string    `json:"last_autosave_error,omitempty"`
}

// SavePayload is the payload for SAVE. An empty name uses the default
// snapshot.
type SavePayload struct {
	Name string `json:"name,omitempty"`
}

// SaveData is returned by SAVE.
type SaveData struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Windows int    `json:"windows"`
}

// RestorePayload is the payload for RESTORE. A nil Strict uses the
// configured default.
type RestorePayload struct {
	Name   string `json:"name,omitempty"`
	Strict *bool  `json:"strict,omitempty"`
}

// RestoreData is returned by RESTORE.
type RestoreData struct {
	Name      string   `json:"name"`
	Strict    bool     `json:"strict"`
	Applied   int      `json:"applied"`
	Skipped   int      `json:"skipped"`
	Unmatched int      `json:"unmatched"`
	Rejected  int      `json:"rejected"`
	Failures  []string `json:"failures,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

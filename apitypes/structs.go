package apitypes

import (
	"encoding/json"
	"fmt"
)

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

type Slot struct {
	Slot    int    `json:"slot"`
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode"`
	ModeID  uint8  `json:"modeId"`
	Locked  bool   `json:"locked"`
}

type Port struct {
	Port       int    `json:"port"`
	ActiveSlot int    `json:"activeSlot"`
	Multitap   bool   `json:"multitap"`
	Device     string `json:"device,omitempty"`
	DeviceUID  string `json:"deviceUid,omitempty"`
	Slots      []Slot `json:"slots"`
}

type PadListResponse struct {
	Ports []Port `json:"ports"`
}

type SlotResponse struct {
	Port int `json:"port"`
	Slot int `json:"slot"`
}

type ModeResponse struct {
	Port   int    `json:"port"`
	Slot   int    `json:"slot"`
	Mode   string `json:"mode"`
	ModeID uint8  `json:"modeId"`
	Locked bool   `json:"locked"`
}

// FreezeResponse carries a save state as standard base64.
type FreezeResponse struct {
	Format string `json:"format"`
	Size   int    `json:"size"`
	Data   string `json:"data"`
}

type ThawResponse struct {
	Size int `json:"size"`
}

// ConfigResponse holds the live pad config in its JSON form.
type ConfigResponse struct {
	Config json.RawMessage `json:"config"`
}

type KeyEventResponse struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

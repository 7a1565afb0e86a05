package model

// Backend identifies which interface answered a request.
type Backend string

const (
	BackendNone Backend = ""
	BackendXML  Backend = "xml_api"
	BackendODBC Backend = "odbc"
)

// BackendStatus is the probe result for a single backend.
type BackendStatus struct {
	Connected bool     `json:"connected"`
	Companies []string `json:"companies"`
	Error     string   `json:"error,omitempty"`
}

// ConnectionStatus is the combined probe result.
type ConnectionStatus struct {
	XMLAPI       BackendStatus `json:"xml_api"`
	ODBC         BackendStatus `json:"odbc"`
	ActiveMethod Backend       `json:"active_method"`
}

package client

// ProcessInfo is one row of the process listing.
type ProcessInfo struct {
	Name        string `json:"name"`
	Mode        string `json:"mode"`
	Description string `json:"description"`
	Finished    int    `json:"finished"`
	Unfinished  int    `json:"unfinished"`
	UpdateTime  string `json:"update_time"`
	Active      bool   `json:"active"`
}

// Status mirrors the daemon's active-process report: the working lists
// as currently edited plus the baseline-relative delta.
type Status struct {
	Process       string   `json:"process"`
	Mode          string   `json:"mode"`
	Description   string   `json:"description"`
	AtNames       []string `json:"at_names"`
	Unfinished    []string `json:"unfinished"`
	Finished      []string `json:"finished"`
	NewFinished   []string `json:"new_finished"`
	NewUnfinished []string `json:"new_unfinished"`
	Pending       bool     `json:"pending"`
	UpdateTime    string   `json:"update_time"`
}

// CreateRequest describes a new process to insert.
type CreateRequest struct {
	Name        string   `json:"name"`
	Unfinished  []string `json:"unfinished"`
	AtNames     []string `json:"at_names,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

package models

// FilePathRequest asks for an operation over a file located on the server
type FilePathRequest struct {
	FilePath string `json:"file_path" form:"file_path"`
}

// OperationRequest asks for the given operation over a file located on the server
type OperationRequest struct {
	FilePath  string `json:"file_path" form:"file_path"`
	Operation string `json:"operation" form:"operation"`
}

// APIResponse is the envelope of every successful operation
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitzero"`
	Cached    bool   `json:"cached,omitzero"`
	Data      any    `json:"data"`
}

// APIErrorResponse is the envelope of every failed operation
type APIErrorResponse struct {
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	DebugMessage string    `json:"debug_message,omitzero"`
	Type         ErrorType `json:"type"`
	Code         string    `json:"code,omitzero"`
	RequestID    string    `json:"request_id,omitzero"`
}

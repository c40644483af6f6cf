package models

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles int    `json:"articles"`
	Error    string `json:"error,omitempty"`
}

package dto

type ErrorResponse struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

type APIError struct {
	Error ErrorResponse `json:"error"`
}

// Package main provides a TCP batch server: line-delimited JSON requests
// carrying SQL scripts, line-delimited JSON responses carrying per-statement
// results.
package main

import (
	"encoding/json"
)

// Request is one script from the client.
type Request struct {
	SQL         string `json:"sql"`
	StopOnError bool   `json:"stop_on_error,omitempty"`
}

// Response is the server's reply to one request.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"` // "batch" or "auth"
	Result  json.RawMessage `json:"result,omitempty"`
}

// StatementRecord is the wire shape of one statement outcome. Result holds
// the rows of a fetch or plain true for a successful execute; RowCount
// carries the row count of a fetch or the affected-row count of an execute.
type StatementRecord struct {
	Statement string `json:"statement"`
	Type      string `json:"statement_type"`
	Result    any    `json:"result,omitempty"`
	RowCount  int    `json:"row_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BatchResponse summarizes one executed script.
type BatchResponse struct {
	ID         string            `json:"id"`
	Attempted  int               `json:"attempted"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	TimeMs     float64           `json:"time_ms"`
	Statements []StatementRecord `json:"statements"`
}

// AuthResponse reports the outcome of an AUTH command.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity,omitempty"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a JSON request line.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

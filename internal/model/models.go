package model

import "encoding/json"

// Recipe is a stored transformation pipeline
type Recipe struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Pipeline   string `json:"pipeline"`   // raw JSON array of steps, forwarded verbatim
	OutputType string `json:"outputType"` // e.g., "string"
}

// Server is a stored processing endpoint
type Server struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Response is the part of a server reply the client consumes
type Response struct {
	Value json.RawMessage `json:"value"`
}

package analysis

import (
	"encoding/json"
	"fmt"
)

// Result is the structured outcome of one facial analysis.
// It mirrors the wire contract of the engine: a single JSON document on the
// engine's stdout. It is ephemeral and never persisted with photo records.
type Result struct {
	Available bool          `json:"available"`
	FaceCount int           `json:"face_count"`
	Faces     []FaceSummary `json:"faces,omitempty"`
	// Error carries the engine's own explanation when Available is false
	// (e.g., credentials missing). Informational only.
	Error string `json:"error,omitempty"`
}

// FaceSummary describes a single detected face.
type FaceSummary struct {
	Confidence      float64      `json:"confidence"`
	Smiling         bool         `json:"smiling"`
	SmileConfidence float64      `json:"smile_confidence"`
	HasBeard        bool         `json:"has_beard"`
	PrimaryEmotion  string       `json:"primary_emotion"`
	BoundingBox     *BoundingBox `json:"bounding_box,omitempty"`
}

// BoundingBox is a face location in relative image coordinates.
// Field names match the Rekognition DetectFaces response.
type BoundingBox struct {
	Width  float64 `json:"Width"`
	Height float64 `json:"Height"`
	Left   float64 `json:"Left"`
	Top    float64 `json:"Top"`
}

// ParseResult parses an engine output document into a Result.
func ParseResult(data []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal engine output: %w", err)
	}
	return &result, nil
}

package model

// IntakeRequest names a file on disk to run through text recognition.
// OriginalName is only used to derive the artifact name.
type IntakeRequest struct {
	Path         string `json:"path"`
	OriginalName string `json:"originalName"`
}

// OcrArtifact is the JSON document persisted for each processed file.
type OcrArtifact struct {
	Text string `json:"text"`
	File string `json:"file"`
}

// ForwardingPayload is sent to the ingestion endpoint.
type ForwardingPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

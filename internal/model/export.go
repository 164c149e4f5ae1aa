package model

// ContentFile is the JSON structure for question and subject content,
// used both for loading and for export-content output.
type ContentFile struct {
	Questions []Question `json:"questions"`
	Subjects  []Subject  `json:"subjects,omitempty"`
}

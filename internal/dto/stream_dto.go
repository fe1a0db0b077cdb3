package dto

// StreamRequest is the single frame a client sends after the channel opens.
type StreamRequest struct {
	Query string `json:"query"`
}

// Tagged frame types.
const (
	FrameTypeChunk = "chunk"
	FrameTypeEnd   = "end"
	FrameTypeError = "error"
)

// TaggedFrame is the explicit alternative to in-band sentinels.
type TaggedFrame struct {
	Type      string        `json:"type" validate:"required,oneof=chunk end error"`
	Payload   string        `json:"payload,omitempty"`
	Citations []CitationDTO `json:"citations,omitempty" validate:"dive"`
}

type CitationDTO struct {
	Content  string `json:"content"`
	Filename string `json:"filename" validate:"required"`
	FileId   string `json:"fileId"`
}

package entity

// ChatCitation points at the excerpt of an uploaded file an answer relied on.
type ChatCitation struct {
	Content  string
	Filename string
	FileId   string
}

package entity

// UploadedFile is a backend-confirmed document. Id is assigned by the backend.
type UploadedFile struct {
	Id       string
	Name     string
	IsActive bool
}

func (f UploadedFile) StatusLabel() string {
	if f.IsActive {
		return "active"
	}
	return "inactive"
}

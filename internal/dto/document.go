package dto

import "strings"

// UploadDocumentForm is the metadata sent with a document file.
type UploadDocumentForm struct {
	StudentID    string `json:"studentId" form:"studentId" validate:"required"`
	Title        string `json:"title" form:"title" validate:"max=200"`
	DocumentType string `json:"documentType" form:"documentType" validate:"required,max=80"`
	Comments     string `json:"comments" form:"comments" validate:"max=1000"`
}

// Normalize trims every field.
func (f *UploadDocumentForm) Normalize() {
	f.StudentID = strings.TrimSpace(f.StudentID)
	f.Title = strings.TrimSpace(f.Title)
	f.DocumentType = strings.TrimSpace(f.DocumentType)
	f.Comments = strings.TrimSpace(f.Comments)
}

// Fields is the multipart metadata.
func (f UploadDocumentForm) Fields() map[string]string {
	fields := map[string]string{
		"studentId":    f.StudentID,
		"documentType": f.DocumentType,
	}
	if f.Title != "" {
		fields["title"] = f.Title
	}
	if f.Comments != "" {
		fields["comments"] = f.Comments
	}
	return fields
}

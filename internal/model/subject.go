package model

// Subject represents a school subject that questions, papers, and exams
// are grouped under.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

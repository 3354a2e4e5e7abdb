package dto

// SubmissionRequest carries a theory about a case for evaluation.
type SubmissionRequest struct {
	CaseID *uint64 `json:"case_id" validate:"required"`
	Case   string  `json:"case" validate:"required,max=20000"`
	Theory string  `json:"theory" validate:"required,max=20000"`
}

// SubmissionFilter narrows anchored submission listings.
type SubmissionFilter struct {
	CaseID *uint64
	Author string
}

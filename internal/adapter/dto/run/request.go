package run

// CreateRunRequest triggers a resolution run over a study folder.
type CreateRunRequest struct {
	StudyPath string `json:"study_path" validate:"required"`
}

// ListRunsRequest paginates the run listing.
type ListRunsRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// Normalize applies listing defaults.
func (r *ListRunsRequest) Normalize() {
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 20
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

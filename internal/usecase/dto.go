package usecase

import "github.com/tetraeducacao/leadtracker/internal/entity"

type SearchLeadInput struct {
	SearchValue string            `json:"searchValue"`
	SearchType  entity.SearchType `json:"searchType"`
}

// LeadOutput é o lead com o progresso já calculado, como a API devolve.
type LeadOutput struct {
	*entity.Lead
	Progress int `json:"progress"`
}

func NewLeadOutput(lead *entity.Lead) *LeadOutput {
	if lead == nil {
		return nil
	}
	return &LeadOutput{Lead: lead, Progress: lead.Progress()}
}

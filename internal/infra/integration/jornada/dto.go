package jornada

import "github.com/tetraeducacao/leadtracker/internal/entity"

// SearchRequest é o corpo enviado ao webhook jornada-do-cliente.
type SearchRequest struct {
	SearchValue string            `json:"searchValue"`
	SearchType  entity.SearchType `json:"searchType"`
}

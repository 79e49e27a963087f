package models

import (
	"time"

	"github.com/prefeitura-sp/central-cidadao-api/pkg/protocol"
)

// ServiceType identifies the city service a request asks for.
type ServiceType string

// Service types handled by the municipal ticketing desk.
const (
	ServiceTreePruning    ServiceType = "PODA"
	ServiceStreetLighting ServiceType = "ILUMINACAO"
	ServicePublicWorks    ServiceType = "OBRAS"
	ServiceStreetCleaning ServiceType = "LIMPEZA"
)

// Valid reports whether the type is recognised.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTreePruning, ServiceStreetLighting, ServicePublicWorks, ServiceStreetCleaning:
		return true
	}
	return false
}

// ProtocolKind maps the service type to its protocol prefix.
func (t ServiceType) ProtocolKind() protocol.Kind {
	switch t {
	case ServiceTreePruning:
		return protocol.KindTreePruning
	case ServiceStreetLighting:
		return protocol.KindStreetLighting
	case ServicePublicWorks:
		return protocol.KindPublicWorks
	case ServiceStreetCleaning:
		return protocol.KindStreetCleaning
	}
	return ""
}

// Label returns the citizen-facing description of the service type.
func (t ServiceType) Label() string {
	switch t {
	case ServiceTreePruning:
		return "Poda de Árvore"
	case ServiceStreetLighting:
		return "Iluminação Pública"
	case ServicePublicWorks:
		return "Obras e Reparos"
	case ServiceStreetCleaning:
		return "Limpeza Urbana"
	}
	return string(t)
}

// RequestPriority ranks how urgent a service request is.
type RequestPriority string

// Priorities.
const (
	PriorityLow    RequestPriority = "BAIXA"
	PriorityMedium RequestPriority = "MEDIA"
	PriorityHigh   RequestPriority = "ALTA"
)

// Valid reports whether the priority is recognised.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// RequestStatus represents the lifecycle of a service request. Unlike
// enrollments, the ticketing desk accepts any status change.
type RequestStatus string

// Service request statuses.
const (
	RequestStatusOpen        RequestStatus = "ABERTA"
	RequestStatusUnderReview RequestStatus = "EM_ANALISE"
	RequestStatusInProgress  RequestStatus = "EM_EXECUCAO"
	RequestStatusCompleted   RequestStatus = "CONCLUIDA"
	RequestStatusCancelled   RequestStatus = "CANCELADA"
)

// Valid reports whether the status is recognised.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusOpen, RequestStatusUnderReview, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// Label returns the human-readable Portuguese description.
func (s RequestStatus) Label() string {
	switch s {
	case RequestStatusOpen:
		return "Aberta"
	case RequestStatusUnderReview:
		return "Em Análise"
	case RequestStatusInProgress:
		return "Em Execução"
	case RequestStatusCompleted:
		return "Concluída"
	case RequestStatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// ServiceRequest is a free-text ticket for a city service.
type ServiceRequest struct {
	ID          string          `db:"id" json:"id"`
	Protocol    string          `db:"protocolo" json:"protocolo"`
	CitizenID   string          `db:"cidadao_id" json:"cidadao_id"`
	Type        ServiceType     `db:"tipo_servico" json:"tipo_servico"`
	Description string          `db:"descricao" json:"descricao"`
	Street      string          `db:"endereco" json:"endereco,omitempty"`
	District    string          `db:"bairro" json:"bairro,omitempty"`
	Landmark    string          `db:"ponto_referencia" json:"ponto_referencia,omitempty"`
	Priority    RequestPriority `db:"prioridade" json:"prioridade"`
	Status      RequestStatus   `db:"status" json:"status"`
	RequestedAt time.Time       `db:"data_solicitacao" json:"data_solicitacao"`
	UpdatedAt   time.Time       `db:"data_atualizacao" json:"data_atualizacao"`
	CompletedAt *time.Time      `db:"data_conclusao" json:"data_conclusao,omitempty"`
}

// ServiceRequestFilter narrows ticket listings.
type ServiceRequestFilter struct {
	CitizenID string
	Type      ServiceType
	Status    RequestStatus
	Page      int
	PageSize  int
}

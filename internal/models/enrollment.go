package models

import (
	"time"

	appErrors "github.com/prefeitura-sp/central-cidadao-api/pkg/errors"
)

// EnrollmentStatus represents the lifecycle of an enrollment request.
type EnrollmentStatus string

// Possible enrollment statuses. Wire values match the legacy data set.
const (
	EnrollmentStatusPending     EnrollmentStatus = "PENDENTE"
	EnrollmentStatusUnderReview EnrollmentStatus = "EM_ANALISE"
	EnrollmentStatusApproved    EnrollmentStatus = "APROVADA"
	EnrollmentStatusRejected    EnrollmentStatus = "REJEITADA"
	EnrollmentStatusCancelled   EnrollmentStatus = "CANCELADA"
)

// Valid reports whether the status is one of the recognised values.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusUnderReview, EnrollmentStatusApproved,
		EnrollmentStatusRejected, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// Label returns the human-readable Portuguese description used in
// citizen-facing notification text.
func (s EnrollmentStatus) Label() string {
	switch s {
	case EnrollmentStatusPending:
		return "Pendente"
	case EnrollmentStatusUnderReview:
		return "Em Análise"
	case EnrollmentStatusApproved:
		return "Aprovada"
	case EnrollmentStatusRejected:
		return "Rejeitada"
	case EnrollmentStatusCancelled:
		return "Cancelada"
	}
	return string(s)
}

// SeatEffect says what a status transition does to the school's seat ledger.
type SeatEffect int

// Seat effects.
const (
	SeatEffectNone SeatEffect = iota
	SeatEffectDebit
)

// enrollmentTransitions lists the statuses reachable from each status.
// Rejected and cancelled enrollments are terminal.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusPending:     {EnrollmentStatusUnderReview, EnrollmentStatusApproved, EnrollmentStatusRejected, EnrollmentStatusCancelled},
	EnrollmentStatusUnderReview: {EnrollmentStatusApproved, EnrollmentStatusRejected, EnrollmentStatusCancelled},
	EnrollmentStatusApproved:    {EnrollmentStatusCancelled},
	EnrollmentStatusRejected:    {},
	EnrollmentStatusCancelled:   {},
}

// PlanTransition validates a requested status change and reports whether it
// must consume a seat. Re-requesting the current status is accepted as a
// no-op so retried calls stay idempotent. A seat is debited only on the first
// approval of an enrollment, tracked by the explicit seatDebited latch;
// leaving the approved state never returns the seat.
func PlanTransition(current, requested EnrollmentStatus, seatDebited bool) (EnrollmentStatus, SeatEffect, error) {
	if !requested.Valid() {
		return current, SeatEffectNone, appErrors.Clone(appErrors.ErrInvalidTransition, "unknown enrollment status: "+string(requested))
	}
	if requested != current && !reachable(current, requested) {
		return current, SeatEffectNone, appErrors.Clone(appErrors.ErrInvalidTransition,
			"cannot move enrollment from "+string(current)+" to "+string(requested))
	}

	effect := SeatEffectNone
	if requested == EnrollmentStatusApproved && !seatDebited {
		effect = SeatEffectDebit
	}
	return requested, effect, nil
}

func reachable(current, requested EnrollmentStatus) bool {
	for _, next := range enrollmentTransitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// Enrollment captures a citizen's school enrollment request. Records are
// never hard-deleted; CANCELADA represents withdrawal.
type Enrollment struct {
	ID          string           `db:"id" json:"id"`
	Protocol    string           `db:"protocolo" json:"protocolo"`
	CitizenID   string           `db:"cidadao_id" json:"cidadao_id"`
	SchoolID    string           `db:"escola_id" json:"escola_id"`
	StudentName string           `db:"nome_aluno" json:"nome_aluno"`
	BirthDate   *time.Time       `db:"data_nascimento" json:"data_nascimento,omitempty"`
	Level       EducationLevel   `db:"nivel_ensino" json:"nivel_ensino"`
	Grade       string           `db:"serie" json:"serie,omitempty"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	Notes       string           `db:"observacoes" json:"observacoes,omitempty"`
	SeatDebited bool             `db:"vaga_debitada" json:"vaga_debitada"`
	RequestedAt time.Time        `db:"data_solicitacao" json:"data_solicitacao"`
	UpdatedAt   time.Time        `db:"data_atualizacao" json:"data_atualizacao"`
}

// EnrollmentDetail enriches Enrollment with citizen and school info.
type EnrollmentDetail struct {
	Enrollment
	CitizenName string `db:"cidadao_nome" json:"cidadao_nome"`
	SchoolName  string `db:"escola_nome" json:"escola_nome"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	CitizenID string
	SchoolID  string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

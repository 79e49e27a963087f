package models

import "time"

// EducationLevel identifies the stage of schooling a school offers.
type EducationLevel string

// Education levels recognised by the municipal network.
const (
	LevelInfantil      EducationLevel = "INFANTIL"
	LevelFundamentalI  EducationLevel = "FUNDAMENTAL_I"
	LevelFundamentalII EducationLevel = "FUNDAMENTAL_II"
	LevelMedio         EducationLevel = "MEDIO"
)

// Valid reports whether the level is one of the recognised values.
func (l EducationLevel) Valid() bool {
	switch l {
	case LevelInfantil, LevelFundamentalI, LevelFundamentalII, LevelMedio:
		return true
	}
	return false
}

// SeatStatus classifies how much enrollment capacity a school has left.
type SeatStatus string

// Seat status classifications.
const (
	SeatStatusOpen    SeatStatus = "DISPONIVEL"
	SeatStatusLimited SeatStatus = "LIMITADO"
	SeatStatusFull    SeatStatus = "LOTADO"
)

// limitedOccupancyThreshold is the occupancy ratio above which a school with
// remaining seats is flagged as LIMITADO.
const limitedOccupancyThreshold = 0.8

// School holds the directory entry and seat counters for a municipal school.
// Invariant: SeatsTaken never exceeds SeatsTotal; the repository enforces it
// with a conditional update on debit.
type School struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"nome" json:"nome"`
	Street     string         `db:"endereco" json:"endereco,omitempty"`
	District   string         `db:"bairro" json:"bairro,omitempty"`
	City       string         `db:"cidade" json:"cidade,omitempty"`
	Phone      string         `db:"telefone" json:"telefone,omitempty"`
	Level      EducationLevel `db:"nivel_ensino" json:"nivel_ensino"`
	SeatsTotal int            `db:"vagas_totais" json:"vagas_totais"`
	SeatsTaken int            `db:"vagas_ocupadas" json:"vagas_ocupadas"`
	Active     bool           `db:"ativo" json:"ativo"`
	CreatedAt  time.Time      `db:"data_cadastro" json:"data_cadastro"`
	UpdatedAt  time.Time      `db:"data_atualizacao" json:"data_atualizacao"`
}

// SeatsAvailable derives the remaining capacity. Never stored.
func (s School) SeatsAvailable() int {
	return s.SeatsTotal - s.SeatsTaken
}

// OccupancyRatio is taken seats over total, 0 when no seats exist.
func (s School) OccupancyRatio() float64 {
	if s.SeatsTotal == 0 {
		return 0
	}
	return float64(s.SeatsTaken) / float64(s.SeatsTotal)
}

// SeatClassification buckets current occupancy into DISPONIVEL, LIMITADO or
// LOTADO. Pure function of the counters.
func (s School) SeatClassification() SeatStatus {
	if s.SeatsAvailable() <= 0 {
		return SeatStatusFull
	}
	if s.OccupancyRatio() >= limitedOccupancyThreshold {
		return SeatStatusLimited
	}
	return SeatStatusOpen
}

// SchoolView is the API shape of a school including derived seat figures.
type SchoolView struct {
	School
	SeatsAvailable   int        `json:"vagas_disponiveis"`
	OccupancyPercent float64    `json:"percentual_ocupacao"`
	SeatStatus       SeatStatus `json:"status_vagas"`
}

// View computes the derived seat figures for API responses.
func (s School) View() SchoolView {
	return SchoolView{
		School:           s,
		SeatsAvailable:   s.SeatsAvailable(),
		OccupancyPercent: s.OccupancyRatio() * 100,
		SeatStatus:       s.SeatClassification(),
	}
}

// SchoolFilter narrows school directory listings.
type SchoolFilter struct {
	Level         EducationLevel
	District      string
	Name          string
	OnlyOpenSeats bool
	Page          int
	PageSize      int
}

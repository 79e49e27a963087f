package models

import "time"

// Citizen is a registered resident able to request services and enrollments.
type Citizen struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"nome" json:"nome"`
	CPF        string    `db:"cpf" json:"cpf"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"telefone" json:"telefone,omitempty"`
	ZipCode    string    `db:"cep" json:"cep,omitempty"`
	Street     string    `db:"endereco" json:"endereco,omitempty"`
	Number     string    `db:"numero" json:"numero,omitempty"`
	Complement string    `db:"complemento" json:"complemento,omitempty"`
	District   string    `db:"bairro" json:"bairro,omitempty"`
	City       string    `db:"cidade" json:"cidade,omitempty"`
	State      string    `db:"estado" json:"estado,omitempty"`
	CreatedAt  time.Time `db:"data_cadastro" json:"data_cadastro"`
	UpdatedAt  time.Time `db:"data_atualizacao" json:"data_atualizacao"`
}

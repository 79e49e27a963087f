package models

import "time"

// NotificationKind classifies inbox notifications.
type NotificationKind string

// Notification kinds.
const (
	NotificationInfo    NotificationKind = "INFO"
	NotificationWarning NotificationKind = "ALERTA"
	NotificationSuccess NotificationKind = "SUCESSO"
	NotificationError   NotificationKind = "ERRO"
)

// Notification is an inbox entry addressed to a citizen.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	CitizenID string           `db:"cidadao_id" json:"cidadao_id"`
	Title     string           `db:"titulo" json:"titulo"`
	Message   string           `db:"mensagem" json:"mensagem"`
	Kind      NotificationKind `db:"tipo" json:"tipo"`
	Read      bool             `db:"lida" json:"lida"`
	CreatedAt time.Time        `db:"data_criacao" json:"data_criacao"`
}

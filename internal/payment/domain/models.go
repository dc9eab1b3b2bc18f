package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
	StatusOverdue Status = "OVERDUE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue:
		return true
	default:
		return false
	}
}

type Method string

const (
	MethodCash      Method = "CASH"
	MethodTransfer  Method = "TRANSFER"
	MethodCard      Method = "CARD"
	MethodNequi     Method = "NEQUI"
	MethodDaviplata Method = "DAVIPLATA"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodNequi, MethodDaviplata:
		return true
	default:
		return false
	}
}

// Payment is a single charge against a client. PaidAt is set exactly when
// Status is PAID, and a PAID payment never changes afterwards.
type Payment struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index:ix_payments_company_status_paid,priority:1" json:"company_id"`
	ClientID  snowflake.ID `gorm:"not null;index" json:"client_id"`
	Amount    float64      `gorm:"not null" json:"amount"`
	Status    Status       `gorm:"type:text;not null;index:ix_payments_company_status_paid,priority:2" json:"status"`
	Method    Method       `gorm:"type:text;not null" json:"method"`
	Reference string       `gorm:"type:text;not null;uniqueIndex:ux_payments_reference" json:"reference"`
	PaidAt    *time.Time   `gorm:"index:ix_payments_company_status_paid,priority:3" json:"paid_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

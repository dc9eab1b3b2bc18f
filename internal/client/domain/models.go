package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	plandomain "github.com/smallbiznis/clientbase/internal/plan/domain"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusPending   Status = "PENDING"
	StatusSuspended Status = "SUSPENDED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every client status in display order.
var Statuses = []Status{StatusActive, StatusPending, StatusSuspended, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPending, StatusSuspended, StatusCancelled:
		return true
	default:
		return false
	}
}

type Client struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID      `gorm:"not null;index;uniqueIndex:ux_clients_company_email,priority:1" json:"company_id"`
	PlanID    snowflake.ID      `gorm:"not null;index" json:"plan_id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Email     string            `gorm:"type:text;not null;uniqueIndex:ux_clients_company_email,priority:2" json:"email"`
	Phone     *string           `gorm:"type:text" json:"phone"`
	Status    Status            `gorm:"type:text;not null;index" json:"status"`
	Metadata  datatypes.JSONMap `gorm:"not null" json:"metadata"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

// ClientView is a client together with the plan it is subscribed to.
type ClientView struct {
	Client
	Plan *plandomain.Plan `json:"plan,omitempty"`
}

package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Name string

const (
	NameBasic   Name = "Basic"
	NamePro     Name = "Pro"
	NamePremium Name = "Premium"
)

func (n Name) Valid() bool {
	switch n {
	case NameBasic, NamePro, NamePremium:
		return true
	default:
		return false
	}
}

const DefaultInterval = "monthly"

// Plan is a subscription tier a client is billed on.
type Plan struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;uniqueIndex:ux_plans_company_name,priority:1" json:"company_id"`
	Name      Name         `gorm:"type:text;not null;uniqueIndex:ux_plans_company_name,priority:2" json:"name"`
	Price     float64      `gorm:"not null" json:"price"`
	Interval  string       `gorm:"column:billing_interval;type:text;not null;default:'monthly'" json:"interval"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

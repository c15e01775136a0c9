package models

import (
	"time"

	"gorm.io/datatypes"
)

type Reseller struct {
	ResellerID      string                          `json:"reseller_id" gorm:"column:reseller_id;primaryKey;size:64"`
	ResellerName    string                          `json:"reseller_name" gorm:"not null"`
	ResellerAddress string                          `json:"reseller_address"`
	ContactNo       string                          `json:"contact_no"`
	WhatsAppNo      string                          `json:"whatsapp_no" gorm:"column:whatsapp_no"`
	BankDetails     datatypes.JSONType[BankDetails] `json:"bank_details" gorm:"column:bank_details"`
	CreatedAt       time.Time                       `json:"created_at"`
}

func (Reseller) TableName() string {
	return "resellers"
}

// BankDetails is the payout destination of a reseller. Every field is
// optional; an empty value means "not provided".
type BankDetails struct {
	AccNo      string `json:"acc_no,omitempty"`
	Bank       string `json:"bank,omitempty"`
	Branch     string `json:"branch,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`
}

func (b BankDetails) IsZero() bool {
	return b == BankDetails{}
}

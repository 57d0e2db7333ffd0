package models

import (
	"time"
)

// Delivery outcomes recorded in the ledger
const (
	DeliveryStatusSent     = "sent"
	DeliveryStatusFailed   = "failed"
	DeliveryStatusTrapped  = "trapped"
	DeliveryStatusRejected = "rejected"
)

// Delivery is one ledger row per processed submission
type Delivery struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Status       string    `gorm:"not null;size:16;index" json:"status"`
	Provider     string    `gorm:"size:32" json:"provider"`
	ProviderID   string    `gorm:"size:255" json:"provider_id,omitempty"`
	SenderName   string    `gorm:"size:120" json:"sender_name,omitempty"`
	SenderEmail  string    `gorm:"size:255" json:"sender_email,omitempty"`
	Subject      string    `gorm:"size:160" json:"subject,omitempty"`
	ErrorCode    string    `gorm:"size:64" json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	RemoteIP     string    `gorm:"size:64" json:"remote_ip,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for Delivery
func (Delivery) TableName() string {
	return "deliveries"
}

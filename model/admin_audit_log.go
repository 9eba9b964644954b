package model

import (
	"time"
)

// AdminAuditLog represents audit trail for admin actions
type AdminAuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AdminID     uint      `gorm:"not null;index" json:"adminId"`
	Action      string    `gorm:"type:varchar(100);not null" json:"action"` // e.g. "student_finalize", "student_forward"
	Resource    string    `gorm:"type:varchar(100)" json:"resource"`        // e.g. "users", "shortlists"
	ResourceID  uint      `json:"resourceId"`
	NewValue    string    `gorm:"type:text" json:"newValue"`
	StatusCode  int       `json:"statusCode"`
	IPAddress   string    `gorm:"type:varchar(45)" json:"ipAddress"`
	UserAgent   string    `gorm:"type:text" json:"userAgent"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`

	// Relationships
	Admin User `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for AdminAuditLog
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}

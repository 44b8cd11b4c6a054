package repository

import "time"

// Profile is an application user.
type Profile struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Email       string     `gorm:"column:email"`
	Name        string     `gorm:"column:name"`
	AccountType string     `gorm:"column:account_type"`
	IsActive    bool       `gorm:"column:is_active"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin reports whether the profile is a system administrator.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.AccountType == AccountTypeAdmin
}

// Account types and farm membership roles as stored in the database.
const (
	AccountTypeAdmin = "admin"
	AccountTypeUser  = "user"

	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleViewer  = "viewer"
)

// Farm is a registered farm.
type Farm struct {
	ID          string    `gorm:"column:id;primaryKey"`
	FarmName    string    `gorm:"column:farm_name"`
	FarmType    *string   `gorm:"column:farm_type"`
	FarmAddress *string   `gorm:"column:farm_address"`
	OwnerID     string    `gorm:"column:owner_id"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (Farm) TableName() string {
	return "farms"
}

// FarmMember links a user to a farm with a role.
type FarmMember struct {
	FarmID string `gorm:"column:farm_id;primaryKey"`
	UserID string `gorm:"column:user_id;primaryKey"`
	Role   string `gorm:"column:role"`
}

// TableName overrides the default table name.
func (FarmMember) TableName() string {
	return "farm_members"
}

// VisitorEntry is a single recorded farm visit.
type VisitorEntry struct {
	ID                string    `gorm:"column:id;primaryKey"`
	FarmID            string    `gorm:"column:farm_id"`
	VisitDatetime     time.Time `gorm:"column:visit_datetime"`
	DisinfectionCheck bool      `gorm:"column:disinfection_check"`
	VisitorPurpose    *string   `gorm:"column:visitor_purpose"`
	VisitorAddress    *string   `gorm:"column:visitor_address"`
}

// TableName overrides the default table name.
func (VisitorEntry) TableName() string {
	return "visitor_entries"
}

// SystemLog is an audit/system log line.
type SystemLog struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Level     string    `gorm:"column:level"`
	Action    string    `gorm:"column:action"`
	Message   string    `gorm:"column:message"`
	UserID    *string   `gorm:"column:user_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the default table name.
func (SystemLog) TableName() string {
	return "system_logs"
}

// internal/domain/models/loginhistory.go
package models

import "time"

// AdminLogin captures one successful admin login.
// CreatedAt is indexed for recent-activity queries.
type AdminLogin struct {
	AdminID          string    `bson:"admin_id"`
	OrganizationName string    `bson:"organization_name"`
	CreatedAt        time.Time `bson:"created_at"`
	IP               string    `bson:"ip"`
	UserAgent        string    `bson:"user_agent,omitempty"`
}

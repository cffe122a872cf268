package models

// SessionsTableName is the name of the table for broker sessions
var SessionsTableName = "sessions"

// SessionModel represents a broker API session
type SessionModel struct {
	ClientCode     string `gorm:"primaryKey" json:"client_code"`
	HashedPassword string `json:"-"`
	JwtToken       string `json:"jwt_token"`
	RefreshToken   string `json:"refresh_token"`
	FeedToken      string `json:"feed_token"`
	LoginTime      string `json:"login_time"`
}

// TableName specifies the table name for the SessionModel
func (SessionModel) TableName() string {
	return SessionsTableName
}

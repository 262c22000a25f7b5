package model

import "time"

const TableNameCredential = "credential"

// Credential mapped from table <credential>
type Credential struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UID             int64      `gorm:"column:uid;not null;uniqueIndex:idx_credential_uid" json:"uid"`
	CredentialsJSON string     `gorm:"column:credentials_json;type:text;not null" json:"-"`
	IsValid         bool       `gorm:"column:is_valid;not null;default:false" json:"isValid"`
	UploadedAt      time.Time  `gorm:"column:uploaded_at;not null" json:"uploadedAt"`
	LastValidatedAt *time.Time `gorm:"column:last_validated_at" json:"lastValidatedAt"`
}

// TableName Credential's table name
func (*Credential) TableName() string {
	return TableNameCredential
}

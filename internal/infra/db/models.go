package db

import "time"

type AttestationModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	AssetSHA256  string    `gorm:"column:asset_sha256;index;not null"`
	MediaType    string    `gorm:"not null"`
	ManifestJSON []byte    `gorm:"type:jsonb;not null"`
	DeviceModel  string    `gorm:"not null"`
	TrustLevel   string    `gorm:"not null"`
	Nonce        string    `gorm:"index"`
	SignedSize   int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (AttestationModel) TableName() string {
	return "attestations"
}

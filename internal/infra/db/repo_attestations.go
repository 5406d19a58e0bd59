package db

import (
	"context"
	"errors"
	"time"

	"attestd/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errDBUnavailable = errors.New("database unavailable")

// Open connects to postgres and migrates the attestation schema.
func Open(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is required")
	}
	conn, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := conn.AutoMigrate(&AttestationModel{}); err != nil {
		return nil, err
	}
	return conn, nil
}

type AttestationRepository struct {
	db *gorm.DB
}

func NewAttestationRepository(db *gorm.DB) *AttestationRepository {
	return &AttestationRepository{db: db}
}

// Record stores the trace of one successful signing operation and returns
// the record ID.
func (r *AttestationRepository) Record(ctx context.Context, rec domain.AttestationRecord) (string, error) {
	if r == nil || r.db == nil {
		return "", errDBUnavailable
	}
	if rec.AssetSHA256 == "" {
		return "", errors.New("asset hash is required")
	}
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := AttestationModel{
		ID:           id,
		AssetSHA256:  rec.AssetSHA256,
		MediaType:    rec.MediaType,
		ManifestJSON: rec.ManifestJSON,
		DeviceModel:  rec.DeviceModel,
		TrustLevel:   rec.TrustLevel,
		Nonce:        rec.Nonce,
		SignedSize:   rec.SignedSize,
		CreatedAt:    createdAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return id, nil
}

// ListByAssetHash answers whether and when an asset was attested.
func (r *AttestationRepository) ListByAssetHash(ctx context.Context, assetSHA256 string) ([]domain.AttestationRecord, error) {
	if r == nil || r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AttestationModel
	err := r.db.WithContext(ctx).
		Where("asset_sha256 = ?", assetSHA256).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	records := make([]domain.AttestationRecord, 0, len(models))
	for _, m := range models {
		records = append(records, domain.AttestationRecord{
			ID:           m.ID,
			AssetSHA256:  m.AssetSHA256,
			MediaType:    m.MediaType,
			ManifestJSON: m.ManifestJSON,
			DeviceModel:  m.DeviceModel,
			TrustLevel:   m.TrustLevel,
			Nonce:        m.Nonce,
			SignedSize:   m.SignedSize,
			CreatedAt:    m.CreatedAt,
		})
	}
	return records, nil
}

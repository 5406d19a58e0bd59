package domain

import "time"

// AttestationRecord is the persisted trace of one successful signing
// operation. The signed bytes themselves are returned to the caller, not
// stored; the record keeps enough to answer "was this asset attested".
type AttestationRecord struct {
	ID           string
	AssetSHA256  string
	MediaType    string
	ManifestJSON []byte
	DeviceModel  string
	TrustLevel   string
	Nonce        string
	SignedSize   int64
	CreatedAt    time.Time
}

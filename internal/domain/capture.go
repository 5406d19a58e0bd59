package domain

// CaptureContext describes a single photo capture as reported by the host
// application. Latitude and Longitude must both be present for GPS
// assertions to be emitted; no range validation is applied.
type CaptureContext struct {
	AppName           string   `json:"app_name"`
	DeviceModel       string   `json:"device_model"`
	OSVersion         string   `json:"os_version"`
	CapturedAtISO8601 string   `json:"captured_at_iso8601"`
	TrustLevel        string   `json:"trust_level"`
	Nonce             *string  `json:"nonce,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
}

// HasGPS reports whether both coordinates were supplied.
func (c CaptureContext) HasGPS() bool {
	return c.Latitude != nil && c.Longitude != nil
}

type HashResult struct {
	SHA256Hex string `json:"sha256_hex"`
}

// SignedArtifact is the legacy placeholder output: the untouched JPEG plus
// a flat manifest JSON that wraps a caller-supplied signature. No embedding
// takes place on this path.
type SignedArtifact struct {
	JPGBytes     []byte `json:"jpg_bytes"`
	ManifestJSON string `json:"manifest_json"`
}

// SignedPhoto is the output of the full signing pipeline.
type SignedPhoto struct {
	SignedJPEG   []byte
	ManifestJSON string
	AssetHashHex string
}

package attest

import (
	"encoding/json"
	"errors"

	"attestd/internal/domain"
	cryptoinfra "attestd/internal/infra/crypto"
)

// HashFrameBytes returns the hex-encoded SHA-256 digest of a frame.
func HashFrameBytes(frame []byte) domain.HashResult {
	return domain.HashResult{SHA256Hex: cryptoinfra.SHA256Hex(frame)}
}

type placeholderManifest struct {
	Type      string          `json:"type"`
	Alg       string          `json:"alg"`
	SHA256    string          `json:"sha256"`
	Signature string          `json:"signature"`
	Metadata  json.RawMessage `json:"metadata"`
}

// BuildC2PAPlaceholder is the legacy unsigned-container path: it wraps a
// caller-supplied signature and metadata into a flat manifest object
// alongside the untouched JPEG bytes. Nothing is embedded. Malformed
// metadata degrades to an empty object rather than failing the call.
func BuildC2PAPlaceholder(jpgBytes []byte, signatureBase64 string, metadataJSON string) domain.SignedArtifact {
	metadata := json.RawMessage(metadataJSON)
	if !json.Valid(metadata) {
		metadata = json.RawMessage("{}")
	}
	manifest := placeholderManifest{
		Type:      "c2pa-placeholder",
		Alg:       "ECDSA_P256_SHA256",
		SHA256:    cryptoinfra.SHA256Hex(jpgBytes),
		Signature: signatureBase64,
		Metadata:  metadata,
	}
	payload, err := json.Marshal(manifest)
	if err != nil {
		// Metadata is pre-validated, so this cannot happen in practice.
		payload = []byte("{}")
	}
	return domain.SignedArtifact{JPGBytes: jpgBytes, ManifestJSON: string(payload)}
}

// Pipeline drives one attested-photo signing operation against a manifest
// embedder. Invocations are independent and share no state; callers
// needing cancellation must impose it around the whole call.
type Pipeline struct {
	Embedder domain.ManifestEmbedder
}

// BuildAndSignC2PA validates the JPEG, builds the manifest definition for
// the capture context, and drives the embedder to produce a signed JPEG.
// Every failure is terminal and classified into the attestation error
// taxonomy; the signing capability is not touched when validation fails.
func (p *Pipeline) BuildAndSignC2PA(jpegBytes []byte, capture domain.CaptureContext, signer domain.HardwareSigner) (*domain.SignedPhoto, error) {
	if len(jpegBytes) < 2 || jpegBytes[0] != 0xFF || jpegBytes[1] != 0xD8 {
		return nil, domain.NewAttestationError(domain.ErrJPEGValidationFailed, "")
	}
	if p.Embedder == nil {
		return nil, domain.NewAttestationError(domain.ErrJPEGEmbedFailed, "no manifest embedder configured")
	}

	adapter, err := NewSignerAdapter(signer)
	if err != nil {
		return nil, err
	}

	// The returned asset hash covers the original, unsigned bytes and is
	// independent of any digest the embedder computes internally.
	assetHash := cryptoinfra.SHA256Hex(jpegBytes)

	manifestJSON, err := BuildManifestDefinition(capture)
	if err != nil {
		return nil, domain.NewAttestationError(domain.ErrManifestBuildFailed, err.Error())
	}

	builder, err := p.Embedder.FromJSON(manifestJSON)
	if err != nil {
		return nil, domain.NewAttestationError(domain.ErrManifestBuildFailed, err.Error())
	}

	signed, err := builder.Sign(adapter, MediaTypeJPEG, jpegBytes)
	if err != nil {
		if errors.Is(err, domain.ErrBadParam) {
			return nil, domain.NewAttestationError(domain.ErrSigningFailed, err.Error())
		}
		return nil, domain.NewAttestationError(domain.ErrJPEGEmbedFailed, err.Error())
	}

	return &domain.SignedPhoto{
		SignedJPEG:   signed,
		ManifestJSON: manifestJSON,
		AssetHashHex: assetHash,
	}, nil
}

package attest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"attestd/internal/domain"
)

var minimalJPEG = []byte{0xFF, 0xD8, 0xFF, 0xD9}

func TestHashFrameBytes(t *testing.T) {
	frame := []byte("frame contents")
	sum := sha256.Sum256(frame)
	got := HashFrameBytes(frame)
	if got.SHA256Hex != hex.EncodeToString(sum[:]) {
		t.Fatalf("sha256 = %q", got.SHA256Hex)
	}
}

func TestBuildC2PAPlaceholder(t *testing.T) {
	artifact := BuildC2PAPlaceholder(minimalJPEG, "c2lnbmF0dXJl", `{"camera":"rear"}`)
	if !bytes.Equal(artifact.JPGBytes, minimalJPEG) {
		t.Fatal("placeholder path must not touch the JPEG bytes")
	}

	var manifest struct {
		Type      string          `json:"type"`
		Alg       string          `json:"alg"`
		SHA256    string          `json:"sha256"`
		Signature string          `json:"signature"`
		Metadata  map[string]any  `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(artifact.ManifestJSON), &manifest); err != nil {
		t.Fatalf("manifest JSON: %v", err)
	}
	if manifest.Type != "c2pa-placeholder" || manifest.Alg != "ECDSA_P256_SHA256" {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	sum := sha256.Sum256(minimalJPEG)
	if manifest.SHA256 != hex.EncodeToString(sum[:]) {
		t.Fatalf("sha256 = %q", manifest.SHA256)
	}
	if manifest.Signature != "c2lnbmF0dXJl" {
		t.Fatalf("signature = %q", manifest.Signature)
	}
	if manifest.Metadata["camera"] != "rear" {
		t.Fatalf("metadata = %+v", manifest.Metadata)
	}
}

func TestBuildC2PAPlaceholder_MalformedMetadata(t *testing.T) {
	artifact := BuildC2PAPlaceholder(minimalJPEG, "sig", "{not json")
	var manifest struct {
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(artifact.ManifestJSON), &manifest); err != nil {
		t.Fatalf("manifest JSON: %v", err)
	}
	if len(manifest.Metadata) != 0 {
		t.Fatalf("malformed metadata should degrade to empty object, got %+v", manifest.Metadata)
	}
}

func TestBuildAndSignC2PA_RejectsNonJPEG(t *testing.T) {
	signer := &stubSigner{cert: []byte("cert")}
	pipeline := &Pipeline{Embedder: &stubEmbedder{}}

	_, err := pipeline.BuildAndSignC2PA([]byte{0x89, 0x50, 0x4E, 0x47}, baseCapture(), signer)
	if !errors.Is(err, domain.ErrJPEGValidationFailed) {
		t.Fatalf("got %v, want jpeg validation failure", err)
	}
	if signer.certCalls != 0 || signer.signCalls != 0 {
		t.Fatalf("signing capability touched on invalid input: cert=%d sign=%d", signer.certCalls, signer.signCalls)
	}
}

func TestBuildAndSignC2PA_ShortBuffer(t *testing.T) {
	pipeline := &Pipeline{Embedder: &stubEmbedder{}}
	_, err := pipeline.BuildAndSignC2PA([]byte{0xFF}, baseCapture(), &stubSigner{})
	if !errors.Is(err, domain.ErrJPEGValidationFailed) {
		t.Fatalf("got %v, want jpeg validation failure", err)
	}
}

func TestBuildAndSignC2PA_CertificateFailure(t *testing.T) {
	signer := &stubSigner{certErr: domain.ErrCertificateExportFailed}
	pipeline := &Pipeline{Embedder: &stubEmbedder{}}

	_, err := pipeline.BuildAndSignC2PA(minimalJPEG, baseCapture(), signer)
	if !errors.Is(err, domain.ErrCertificate) {
		t.Fatalf("got %v, want certificate error", err)
	}
}

func TestBuildAndSignC2PA_ManifestRejected(t *testing.T) {
	embedder := &stubEmbedder{fromJSONErr: errors.New("schema: missing assertions")}
	pipeline := &Pipeline{Embedder: embedder}

	_, err := pipeline.BuildAndSignC2PA(minimalJPEG, baseCapture(), &stubSigner{cert: []byte("cert")})
	if !errors.Is(err, domain.ErrManifestBuildFailed) {
		t.Fatalf("got %v, want manifest build failure", err)
	}
	if detail := domain.ErrorDetail(err); detail != "schema: missing assertions" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestBuildAndSignC2PA_BadParamMapsToSigningFailed(t *testing.T) {
	// The adapter wraps hardware failures as bad-parameter, which the
	// pipeline classifies as a signing failure.
	signer := &stubSigner{cert: []byte("cert"), signErr: domain.ErrSignatureOperationFailed}
	pipeline := &Pipeline{Embedder: &stubEmbedder{builder: &stubBuilder{driveSigner: true}}}

	_, err := pipeline.BuildAndSignC2PA(minimalJPEG, baseCapture(), signer)
	if !errors.Is(err, domain.ErrSigningFailed) {
		t.Fatalf("got %v, want signing failure", err)
	}
}

func TestBuildAndSignC2PA_OtherEmbedErrorMapsToEmbedFailed(t *testing.T) {
	embedder := &stubEmbedder{builder: &stubBuilder{signErr: fmt.Errorf("container: segment overflow")}}
	pipeline := &Pipeline{Embedder: embedder}

	_, err := pipeline.BuildAndSignC2PA(minimalJPEG, baseCapture(), &stubSigner{cert: []byte("cert")})
	if !errors.Is(err, domain.ErrJPEGEmbedFailed) {
		t.Fatalf("got %v, want embed failure", err)
	}
	if detail := domain.ErrorDetail(err); detail != "container: segment overflow" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestBuildAndSignC2PA_EndToEnd(t *testing.T) {
	signer, err := newECDSAStubSigner()
	if err != nil {
		t.Fatalf("stub signer: %v", err)
	}
	embedder := &stubEmbedder{builder: &stubBuilder{driveSigner: true}}
	pipeline := &Pipeline{Embedder: embedder}

	photo, err := pipeline.BuildAndSignC2PA(minimalJPEG, baseCapture(), signer)
	if err != nil {
		t.Fatalf("build and sign: %v", err)
	}

	sum := sha256.Sum256(minimalJPEG)
	if photo.AssetHashHex != hex.EncodeToString(sum[:]) {
		t.Fatalf("asset hash = %q", photo.AssetHashHex)
	}
	if photo.ManifestJSON != embedder.lastJSON {
		t.Fatal("returned manifest differs from the embedded one")
	}
	doc := decodeManifest(t, photo.ManifestJSON)
	if len(doc.Assertions) != 5 {
		t.Fatalf("assertions = %d, want 5 (no trust, no GPS)", len(doc.Assertions))
	}
	if len(photo.SignedJPEG) != len(minimalJPEG)+64 {
		t.Fatalf("signed output length = %d", len(photo.SignedJPEG))
	}
	if signer.signCalls != 1 {
		t.Fatalf("hardware signer invoked %d times, want 1", signer.signCalls)
	}
}

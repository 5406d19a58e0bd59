package embed

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	"attestd/internal/domain"
	"attestd/internal/infra/keys/soft"
	"attestd/pkg/attest"

	"github.com/gowebpki/jcs"
)

var testJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x02, 0xFF, 0xD9}

func validManifestJSON(t *testing.T) string {
	t.Helper()
	manifestJSON, err := attest.BuildManifestDefinition(domain.CaptureContext{
		AppName:           "AtomicCamera",
		DeviceModel:       "Pixel 9 Pro",
		OSVersion:         "Android 15",
		CapturedAtISO8601: "2026-08-30T12:00:00Z",
		TrustLevel:        "hardware-attested",
	})
	if err != nil {
		t.Fatalf("build manifest: %v", err)
	}
	return manifestJSON
}

func newAdapter(t *testing.T) (*attest.SignerAdapter, *soft.Signer) {
	t.Helper()
	signer, err := soft.NewGenerated("embed-test")
	if err != nil {
		t.Fatalf("soft signer: %v", err)
	}
	adapter, err := attest.NewSignerAdapter(signer)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	return adapter, signer
}

func TestFromJSON_RejectsMalformedManifest(t *testing.T) {
	embedder := New()
	cases := []struct {
		name string
		json string
	}{
		{"not json", "{nope"},
		{"missing assertions", `{"title":"t","format":"image/jpeg","claim_generator_info":[{"name":"a","version":"1"}]}`},
		{"wrong format", `{"title":"t","format":"image/png","claim_generator_info":[{"name":"a","version":"1"}],"assertions":[{"label":"l","data":{}}]}`},
		{"empty assertions", `{"title":"t","format":"image/jpeg","claim_generator_info":[{"name":"a","version":"1"}],"assertions":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := embedder.FromJSON(tc.json); err == nil {
				t.Fatal("expected rejection")
			}
		})
	}
}

func TestFromJSON_AcceptsPipelineManifest(t *testing.T) {
	if _, err := New().FromJSON(validManifestJSON(t)); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}
}

func TestSign_EmbedsVerifiableEnvelope(t *testing.T) {
	adapter, signer := newAdapter(t)
	builder, err := New().FromJSON(validManifestJSON(t))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}

	signed, err := builder.Sign(adapter, "image/jpeg", testJPEG)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if !bytes.HasPrefix(signed, []byte{0xFF, 0xD8}) {
		t.Fatal("signed output lost SOI")
	}
	if !bytes.HasSuffix(signed, testJPEG[2:]) {
		t.Fatal("signed output lost original stream tail")
	}
	if signed[2] != 0xFF || signed[3] != 0xEB {
		t.Fatalf("expected APP11 marker after SOI, got %x", signed[2:4])
	}

	// Reassemble the envelope from the APP11 payload.
	segLen := int(signed[4])<<8 | int(signed[5])
	payload := signed[6 : 6+segLen-2]
	var env claimEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	sum := sha256.Sum256(testJPEG)
	if env.AssetSHA256 != hex.EncodeToString(sum[:]) {
		t.Fatalf("asset hash = %q", env.AssetSHA256)
	}
	if env.Alg != "ES256" || env.MediaType != "image/jpeg" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if len(env.CertChain) != 1 {
		t.Fatalf("cert chain length = %d", len(env.CertChain))
	}

	// The signature must verify under the certificate's public key over
	// the canonical unsigned envelope.
	certDER, err := base64.StdEncoding.DecodeString(env.CertChain[0])
	if err != nil {
		t.Fatalf("decode cert: %v", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatalf("parse cert: %v", err)
	}
	pub, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		t.Fatal("certificate key is not ECDSA")
	}
	if !pub.Equal(signer.Public()) {
		t.Fatal("certificate does not match signer key")
	}

	sig, err := base64.StdEncoding.DecodeString(env.Signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("signature length = %d, want 64", len(sig))
	}

	unsignedEnv := env
	unsignedEnv.Signature = ""
	unsigned, err := json.Marshal(unsignedEnv)
	if err != nil {
		t.Fatalf("encode unsigned envelope: %v", err)
	}
	canonical, err := jcs.Transform(unsigned)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	digest := sha256.Sum256(canonical)
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	if !ecdsa.Verify(pub, digest[:], r, s) {
		t.Fatal("embedded signature does not verify")
	}
}

func TestSign_RejectsBadParameters(t *testing.T) {
	adapter, _ := newAdapter(t)
	builder, err := New().FromJSON(validManifestJSON(t))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}

	if _, err := builder.Sign(nil, "image/jpeg", testJPEG); !errors.Is(err, domain.ErrBadParam) {
		t.Fatalf("nil signer: got %v", err)
	}
	if _, err := builder.Sign(adapter, "image/png", testJPEG); !errors.Is(err, domain.ErrBadParam) {
		t.Fatalf("media type: got %v", err)
	}
}

func TestSign_NonJPEGSourceIsNotBadParam(t *testing.T) {
	adapter, _ := newAdapter(t)
	builder, err := New().FromJSON(validManifestJSON(t))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	_, err = builder.Sign(adapter, "image/jpeg", []byte("plain text"))
	if err == nil {
		t.Fatal("expected failure")
	}
	if errors.Is(err, domain.ErrBadParam) {
		t.Fatal("container failure must not classify as bad parameter")
	}
}

func TestSign_ReserveBudgetEnforced(t *testing.T) {
	builder, err := New().FromJSON(validManifestJSON(t))
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	tiny := &tinyReserveSigner{}
	_, err = builder.Sign(tiny, "image/jpeg", testJPEG)
	if !errors.Is(err, domain.ErrBadParam) {
		t.Fatalf("got %v, want bad parameter", err)
	}
	if !strings.Contains(err.Error(), "reserve") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

// tinyReserveSigner satisfies the signing contract but declares a reserve
// budget no real signature block fits into.
type tinyReserveSigner struct{}

func (s *tinyReserveSigner) Sign(data []byte) ([]byte, error) {
	return make([]byte, 64), nil
}

func (s *tinyReserveSigner) Algorithm() string { return "ES256" }

func (s *tinyReserveSigner) CertificateChain() [][]byte {
	return [][]byte{[]byte("certificate")}
}

func (s *tinyReserveSigner) ReserveSize() int { return 8 }

// Package embed carries a signed manifest envelope inside JPEG APP11
// segments. It implements the embedder contract the signing pipeline
// drives; the pipeline itself never depends on this package.
package embed

import (
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"attestd/internal/domain"
	cryptoinfra "attestd/internal/infra/crypto"

	"github.com/gowebpki/jcs"
	"github.com/kaptinlin/jsonschema"
)

//go:embed manifest_schema.json
var manifestSchemaJSON []byte

// app11Marker opens each provenance segment. Payloads larger than one
// segment allows are split across consecutive segments.
var app11Marker = []byte{0xFF, 0xEB}

const maxSegmentPayload = 65535 - 2

type Embedder struct{}

func New() *Embedder {
	return &Embedder{}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, schemaErr = compiler.Compile(manifestSchemaJSON)
	})
	return schema, schemaErr
}

// FromJSON parses and validates a manifest definition against the
// manifest schema.
func (e *Embedder) FromJSON(manifestJSON string) (domain.ManifestBuilder, error) {
	s, err := compiledSchema()
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	result := s.ValidateJSON([]byte(manifestJSON))
	if !result.IsValid() {
		return nil, fmt.Errorf("manifest schema validation failed: %v", result.Errors)
	}
	return &builder{manifestJSON: manifestJSON}, nil
}

type builder struct {
	manifestJSON string
}

// claimEnvelope is the document that rides in the APP11 segments. The
// signature covers the RFC 8785 canonical form of the envelope with an
// empty signature field.
type claimEnvelope struct {
	Manifest    json.RawMessage `json:"manifest"`
	MediaType   string          `json:"media_type"`
	AssetSHA256 string          `json:"asset_sha256"`
	Alg         string          `json:"alg"`
	CertChain   []string        `json:"cert_chain"`
	Signature   string          `json:"signature"`
}

func (b *builder) Sign(signer domain.ManifestSigner, mediaType string, source []byte) ([]byte, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: signer is required", domain.ErrBadParam)
	}
	if mediaType != "image/jpeg" {
		return nil, fmt.Errorf("%w: unsupported media type %q", domain.ErrBadParam, mediaType)
	}
	if len(source) < 2 || source[0] != 0xFF || source[1] != 0xD8 {
		return nil, errors.New("source is not a JPEG stream")
	}

	chain := signer.CertificateChain()
	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: empty certificate chain", domain.ErrBadParam)
	}
	certChain := make([]string, 0, len(chain))
	chainSize := 0
	for _, cert := range chain {
		encoded := base64.StdEncoding.EncodeToString(cert)
		certChain = append(certChain, encoded)
		chainSize += len(encoded)
	}

	env := claimEnvelope{
		Manifest:    json.RawMessage(b.manifestJSON),
		MediaType:   mediaType,
		AssetSHA256: cryptoinfra.SHA256Hex(source),
		Alg:         signer.Algorithm(),
		CertChain:   certChain,
	}

	unsigned, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode claim: %w", err)
	}
	canonical, err := jcs.Transform(unsigned)
	if err != nil {
		return nil, fmt.Errorf("canonicalize claim: %w", err)
	}

	sig, err := signer.Sign(canonical)
	if err != nil {
		return nil, fmt.Errorf("sign claim: %w", err)
	}
	env.Signature = base64.StdEncoding.EncodeToString(sig)

	// The reserve budget bounds the signature block: signature plus
	// certificate chain as they appear in the envelope.
	if block := len(env.Signature) + chainSize; block > signer.ReserveSize() {
		return nil, fmt.Errorf("%w: signature block %d exceeds reserve %d", domain.ErrBadParam, block, signer.ReserveSize())
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return spliceAfterSOI(source, payload), nil
}

// spliceAfterSOI inserts the payload as APP11 segments directly after the
// SOI marker, leaving the rest of the stream untouched. The caller's
// buffer is never modified.
func spliceAfterSOI(source, payload []byte) []byte {
	segments := make([]byte, 0, len(payload)+8)
	for len(payload) > 0 {
		chunk := payload
		if len(chunk) > maxSegmentPayload {
			chunk = chunk[:maxSegmentPayload]
		}
		payload = payload[len(chunk):]

		segLen := len(chunk) + 2
		segments = append(segments, app11Marker...)
		segments = append(segments, byte(segLen>>8), byte(segLen))
		segments = append(segments, chunk...)
	}

	out := make([]byte, 0, len(source)+len(segments))
	out = append(out, source[:2]...)
	out = append(out, segments...)
	out = append(out, source[2:]...)
	return out
}

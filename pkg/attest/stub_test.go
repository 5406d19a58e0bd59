package attest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"

	"attestd/internal/domain"
)

// stubSigner is a deterministic HardwareSigner double that records how
// often each capability is invoked.
type stubSigner struct {
	signature []byte
	cert      []byte
	signErr   error
	certErr   error
	signCalls int
	certCalls int
}

func (s *stubSigner) Sign(data []byte) ([]byte, error) {
	s.signCalls++
	if s.signErr != nil {
		return nil, s.signErr
	}
	return s.signature, nil
}

func (s *stubSigner) CertificateDER() ([]byte, error) {
	s.certCalls++
	if s.certErr != nil {
		return nil, s.certErr
	}
	return s.cert, nil
}

// ecdsaStubSigner signs for real with an in-memory P-256 key, producing
// the DER form a hardware signer would.
type ecdsaStubSigner struct {
	key       *ecdsa.PrivateKey
	cert      []byte
	signCalls int
}

func newECDSAStubSigner() (*ecdsaStubSigner, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &ecdsaStubSigner{key: key, cert: []byte("stub-certificate-der")}, nil
}

func (s *ecdsaStubSigner) Sign(data []byte) ([]byte, error) {
	s.signCalls++
	digest := sha256.Sum256(data)
	return ecdsa.SignASN1(rand.Reader, s.key, digest[:])
}

func (s *ecdsaStubSigner) CertificateDER() ([]byte, error) {
	return s.cert, nil
}

type stubEmbedder struct {
	fromJSONErr error
	builder     *stubBuilder
	lastJSON    string
}

func (e *stubEmbedder) FromJSON(manifestJSON string) (domain.ManifestBuilder, error) {
	e.lastJSON = manifestJSON
	if e.fromJSONErr != nil {
		return nil, e.fromJSONErr
	}
	if e.builder == nil {
		e.builder = &stubBuilder{driveSigner: true}
	}
	return e.builder, nil
}

type stubBuilder struct {
	signErr     error
	driveSigner bool
	output      []byte
}

func (b *stubBuilder) Sign(signer domain.ManifestSigner, mediaType string, source []byte) ([]byte, error) {
	if b.signErr != nil {
		return nil, b.signErr
	}
	if b.driveSigner {
		sig, err := signer.Sign(source)
		if err != nil {
			return nil, err
		}
		out := append([]byte{}, source...)
		return append(out, sig...), nil
	}
	if b.output != nil {
		return b.output, nil
	}
	return source, nil
}

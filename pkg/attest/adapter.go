package attest

import (
	"fmt"

	"attestd/internal/domain"
	cryptoinfra "attestd/internal/infra/crypto"
)

// AlgorithmES256 is the only signing scheme the pipeline supports.
const AlgorithmES256 = "ES256"

// SignatureReserveSize is the byte budget the embedder reserves for the
// signature block. It must stay at or above the largest signature plus
// envelope (certificate chain included) the embedding protocol can
// produce.
const SignatureReserveSize = 10240

// SignerAdapter adapts a HardwareSigner to the embedder's signing
// contract. The certificate is fetched once at construction and cached for
// the adapter's lifetime; key material never passes through the adapter.
type SignerAdapter struct {
	inner      domain.HardwareSigner
	cachedCert []byte
}

func NewSignerAdapter(signer domain.HardwareSigner) (*SignerAdapter, error) {
	cert, err := signer.CertificateDER()
	if err != nil {
		return nil, domain.NewAttestationError(domain.ErrCertificate, err.Error())
	}
	return &SignerAdapter{inner: signer, cachedCert: cert}, nil
}

// Sign delegates to the hardware capability and converts its DER signature
// to the fixed-width encoding. Both a hardware failure and a conversion
// failure surface as bad-parameter conditions, with distinct messages.
func (a *SignerAdapter) Sign(data []byte) ([]byte, error) {
	derSig, err := a.inner.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("%w: hardware signer: %v", domain.ErrBadParam, err)
	}
	sig, err := cryptoinfra.DERToP1363ES256(derSig)
	if err != nil {
		return nil, fmt.Errorf("%w: der to p1363: %v", domain.ErrBadParam, err)
	}
	return sig, nil
}

func (a *SignerAdapter) Algorithm() string {
	return AlgorithmES256
}

// CertificateChain returns the single-certificate chain. Building a full
// chain is the caller's responsibility.
func (a *SignerAdapter) CertificateChain() [][]byte {
	return [][]byte{a.cachedCert}
}

func (a *SignerAdapter) ReserveSize() int {
	return SignatureReserveSize
}

var _ domain.ManifestSigner = (*SignerAdapter)(nil)

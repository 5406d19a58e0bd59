package domain

// HardwareSigner is the caller-supplied signing capability. Implementations
// are typically backed by OS secure hardware; both operations may block and
// may fail with one of the signer sentinel errors. Sign returns the
// signature in ASN.1 DER form as produced by the hardware.
type HardwareSigner interface {
	Sign(data []byte) ([]byte, error)
	CertificateDER() ([]byte, error)
}

// ManifestSigner is the signing contract a manifest embedder drives: raw
// signature bytes in the embedding protocol's native encoding, an algorithm
// identifier, a certificate chain, and an upper bound on the embedded
// signature block size.
type ManifestSigner interface {
	Sign(data []byte) ([]byte, error)
	Algorithm() string
	CertificateChain() [][]byte
	ReserveSize() int
}

// ManifestEmbedder binds a provenance manifest into media bytes. The
// pipeline treats it as a black box: FromJSON parses and validates a
// manifest definition, and the returned builder signs and embeds it.
// Failures caused by signer-supplied parameters must wrap ErrBadParam.
type ManifestEmbedder interface {
	FromJSON(manifestJSON string) (ManifestBuilder, error)
}

type ManifestBuilder interface {
	Sign(signer ManifestSigner, mediaType string, source []byte) ([]byte, error)
}

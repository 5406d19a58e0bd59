package domain

import "errors"

// Attestation error kinds. Callers match with errors.Is against these.
var (
	ErrSigningFailed        = errors.New("signing failed")
	ErrManifestBuildFailed  = errors.New("manifest build failed")
	ErrCertificate          = errors.New("certificate error")
	ErrJPEGEmbedFailed      = errors.New("jpeg embed failed")
	ErrJPEGValidationFailed = errors.New("jpeg validation failed: not a valid jpeg")
)

// Signer capability failures, raised by HardwareSigner implementations.
var (
	ErrHardwareUnavailable      = errors.New("hardware unavailable")
	ErrKeyNotFound              = errors.New("key not found")
	ErrSignatureOperationFailed = errors.New("signature operation failed")
	ErrCertificateExportFailed  = errors.New("certificate export failed")
)

// Service-level failures raised before a photo reaches the signing
// pipeline.
var (
	ErrPolicyDenied  = errors.New("capture policy denied")
	ErrNonceReplayed = errors.New("capture nonce replayed")
)

// ErrBadParam marks embedder failures caused by signer-supplied parameters.
// The pipeline maps these to ErrSigningFailed; any other embedder failure
// during signing maps to ErrJPEGEmbedFailed.
var ErrBadParam = errors.New("bad parameter")

// AttestationError pairs a stable error kind with free-text diagnostic
// detail. Detail rides on the value itself, so matching on the kind with
// errors.Is is unaffected by it.
type AttestationError struct {
	Kind   error
	Detail string
}

func NewAttestationError(kind error, detail string) *AttestationError {
	return &AttestationError{Kind: kind, Detail: detail}
}

func (e *AttestationError) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

func (e *AttestationError) Unwrap() error {
	return e.Kind
}

// ErrorDetail extracts the diagnostic detail from an attestation error, or
// an empty string when the error carries none.
func ErrorDetail(err error) string {
	var ae *AttestationError
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return ""
}

// Package soft provides a software-backed signing capability for the CLI,
// the service, and tests. Production callers supply their own
// hardware-backed implementation of the signer contract.
package soft

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"attestd/internal/domain"
)

// Signer holds a P-256 key and a DER certificate and satisfies the
// hardware signer contract with plain software crypto.
type Signer struct {
	key  *ecdsa.PrivateKey
	cert []byte
}

// NewGenerated creates a fresh P-256 key with a self-signed certificate.
func NewGenerated(commonName string) (*Signer, error) {
	if commonName == "" {
		commonName = "attestd-soft-signer"
	}
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	cert, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return &Signer{key: key, cert: cert}, nil
}

// NewFromPEM builds a signer from a PEM EC private key and certificate.
func NewFromPEM(keyPEM, certPEM []byte) (*Signer, error) {
	key, err := parseECPrivateKeyPEM(keyPEM)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("certificate PEM block not found")
	}
	if _, err := x509.ParseCertificate(block.Bytes); err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}
	return &Signer{key: key, cert: block.Bytes}, nil
}

// LoadFromFiles reads a PEM key pair from disk.
func LoadFromFiles(keyPath, certPath string) (*Signer, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read key: %w", err)
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}
	return NewFromPEM(keyPEM, certPEM)
}

func parseECPrivateKeyPEM(keyPEM []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("private key PEM block not found")
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("private key is not an EC key")
	}
	return key, nil
}

// Sign hashes the payload with SHA-256 and returns the ECDSA signature in
// DER form, matching what secure hardware produces.
func (s *Signer) Sign(data []byte) ([]byte, error) {
	if s == nil || s.key == nil {
		return nil, domain.ErrKeyNotFound
	}
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, s.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignatureOperationFailed, err)
	}
	return sig, nil
}

func (s *Signer) CertificateDER() ([]byte, error) {
	if s == nil || len(s.cert) == 0 {
		return nil, domain.ErrCertificateExportFailed
	}
	return append([]byte(nil), s.cert...), nil
}

// Public exposes the verification key for tests and tooling.
func (s *Signer) Public() *ecdsa.PublicKey {
	return &s.key.PublicKey
}

var _ domain.HardwareSigner = (*Signer)(nil)

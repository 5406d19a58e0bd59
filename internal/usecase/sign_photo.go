package usecase

import (
	"context"
	"strings"
	"time"

	"attestd/internal/domain"
	cryptoinfra "attestd/internal/infra/crypto"
	"attestd/pkg/attest"
)

type SignPhotoRequest struct {
	JPEG    []byte
	Capture domain.CaptureContext
}

type SignPhotoReceipt struct {
	RecordID     string
	SignedJPEG   []byte
	ManifestJSON string
	AssetSHA256  string
	Policy       *domain.PolicyEvaluation
}

// SignPhoto gates a capture through policy and anti-replay checks, runs
// the signing pipeline, and records the attestation. Policy, Replay, and
// Records are each optional; a nil collaborator skips that stage.
type SignPhoto struct {
	Pipeline *attest.Pipeline
	Signer   domain.HardwareSigner
	Policy   PolicyEngine
	Replay   domain.ReplayGuard
	Records  AttestationStore
	NonceTTL time.Duration
	Clock    func() time.Time
}

func (uc *SignPhoto) Execute(ctx context.Context, req SignPhotoRequest) (*SignPhotoReceipt, error) {
	if uc.Pipeline == nil || uc.Signer == nil {
		return nil, domain.NewAttestationError(domain.ErrSigningFailed, "signing pipeline not configured")
	}

	assetHash := cryptoinfra.SHA256Hex(req.JPEG)

	var policyEval *domain.PolicyEvaluation
	if uc.Policy != nil {
		eval, err := uc.Policy.Evaluate(ctx, domain.PolicyInput{
			Capture:     req.Capture,
			MediaType:   attest.MediaTypeJPEG,
			AssetSHA256: assetHash,
		})
		if err != nil {
			return nil, err
		}
		if !eval.Result.Allow {
			return nil, domain.NewAttestationError(domain.ErrPolicyDenied, denialDetail(eval.Result.Deny))
		}
		policyEval = &eval
	}

	if uc.Replay != nil && req.Capture.Nonce != nil && *req.Capture.Nonce != "" {
		fresh, err := uc.Replay.Remember(ctx, *req.Capture.Nonce, uc.NonceTTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, domain.NewAttestationError(domain.ErrNonceReplayed, *req.Capture.Nonce)
		}
	}

	signed, err := uc.Pipeline.BuildAndSignC2PA(req.JPEG, req.Capture, uc.Signer)
	if err != nil {
		return nil, err
	}

	receipt := &SignPhotoReceipt{
		SignedJPEG:   signed.SignedJPEG,
		ManifestJSON: signed.ManifestJSON,
		AssetSHA256:  signed.AssetHashHex,
		Policy:       policyEval,
	}

	if uc.Records != nil {
		rec := domain.AttestationRecord{
			AssetSHA256:  signed.AssetHashHex,
			MediaType:    attest.MediaTypeJPEG,
			ManifestJSON: []byte(signed.ManifestJSON),
			DeviceModel:  req.Capture.DeviceModel,
			TrustLevel:   req.Capture.TrustLevel,
			SignedSize:   int64(len(signed.SignedJPEG)),
			CreatedAt:    uc.now(),
		}
		if req.Capture.Nonce != nil {
			rec.Nonce = *req.Capture.Nonce
		}
		id, err := uc.Records.Record(ctx, rec)
		if err != nil {
			return nil, err
		}
		receipt.RecordID = id
	}

	return receipt, nil
}

func (uc *SignPhoto) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock()
	}
	return time.Now().UTC()
}

func denialDetail(denials []domain.PolicyDenial) string {
	codes := make([]string, 0, len(denials))
	for _, d := range denials {
		codes = append(codes, d.Code)
	}
	return strings.Join(codes, ",")
}

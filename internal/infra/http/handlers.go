package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"attestd/internal/domain"
	"attestd/internal/usecase"
	"attestd/pkg/attest"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type captureInput struct {
	AppName     string   `json:"app_name"`
	DeviceModel string   `json:"device_model"`
	OSVersion   string   `json:"os_version"`
	CapturedAt  string   `json:"captured_at"`
	TrustLevel  string   `json:"trust_level"`
	Nonce       *string  `json:"nonce,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

type signPhotoRequest struct {
	JPEGBase64 string       `json:"jpeg_base64"`
	Capture    captureInput `json:"capture"`
}

type signPhotoResponse struct {
	RecordID         string          `json:"record_id,omitempty"`
	AssetSHA256      string          `json:"asset_sha256"`
	SignedJPEGBase64 string          `json:"signed_jpeg_base64"`
	Manifest         json.RawMessage `json:"manifest"`
	Policy           *policyResponse `json:"policy,omitempty"`
}

type policyResponse struct {
	BundleID   string `json:"bundle_id,omitempty"`
	BundleHash string `json:"bundle_hash"`
}

type hashPhotoRequest struct {
	JPEGBase64 string `json:"jpeg_base64"`
}

type hashPhotoResponse struct {
	AssetSHA256 string `json:"asset_sha256"`
}

type attestationResponse struct {
	ID          string `json:"id"`
	AssetSHA256 string `json:"asset_sha256"`
	MediaType   string `json:"media_type"`
	DeviceModel string `json:"device_model"`
	TrustLevel  string `json:"trust_level"`
	Nonce       string `json:"nonce,omitempty"`
	SignedSize  int64  `json:"signed_size"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleSignPhoto(c *gin.Context) {
	if !s.enforceRateLimit(c, "photos:sign") {
		return
	}
	if s.signUC == nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "signing not configured")
		return
	}

	var req signPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	jpeg, err := base64.StdEncoding.DecodeString(req.JPEGBase64)
	if err != nil || len(jpeg) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ENCODING", "jpeg_base64 is not valid base64")
		return
	}

	receipt, err := s.signUC.Execute(c.Request.Context(), usecase.SignPhotoRequest{
		JPEG: jpeg,
		Capture: domain.CaptureContext{
			AppName:           req.Capture.AppName,
			DeviceModel:       req.Capture.DeviceModel,
			OSVersion:         req.Capture.OSVersion,
			CapturedAtISO8601: req.Capture.CapturedAt,
			TrustLevel:        req.Capture.TrustLevel,
			Nonce:             req.Capture.Nonce,
			Latitude:          req.Capture.Latitude,
			Longitude:         req.Capture.Longitude,
		},
	})
	if err != nil {
		writeSignError(c, err)
		return
	}

	resp := signPhotoResponse{
		RecordID:         receipt.RecordID,
		AssetSHA256:      receipt.AssetSHA256,
		SignedJPEGBase64: base64.StdEncoding.EncodeToString(receipt.SignedJPEG),
		Manifest:         json.RawMessage(receipt.ManifestJSON),
	}
	if receipt.Policy != nil {
		resp.Policy = &policyResponse{
			BundleID:   receipt.Policy.BundleID,
			BundleHash: receipt.Policy.BundleHash,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHashPhoto(c *gin.Context) {
	if !s.enforceRateLimit(c, "photos:hash") {
		return
	}
	var req hashPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	jpeg, err := base64.StdEncoding.DecodeString(req.JPEGBase64)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ENCODING", "jpeg_base64 is not valid base64")
		return
	}
	c.JSON(http.StatusOK, hashPhotoResponse{
		AssetSHA256: attest.HashFrameBytes(jpeg).SHA256Hex,
	})
}

func (s *Server) handleListAttestations(c *gin.Context) {
	if !s.enforceRateLimit(c, "attestations:read") {
		return
	}
	if s.records == nil {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "attestation store not configured")
		return
	}
	records, err := s.records.ListByAssetHash(c.Request.Context(), c.Param("asset_sha256"))
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "attestation lookup failed")
		return
	}
	out := make([]attestationResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, attestationResponse{
			ID:          rec.ID,
			AssetSHA256: rec.AssetSHA256,
			MediaType:   rec.MediaType,
			DeviceModel: rec.DeviceModel,
			TrustLevel:  rec.TrustLevel,
			Nonce:       rec.Nonce,
			SignedSize:  rec.SignedSize,
			CreatedAt:   rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"attestations": out})
}

func (s *Server) handleNoRoute(c *gin.Context) {
	writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
}

func writeSignError(c *gin.Context, err error) {
	detail := domain.ErrorDetail(err)
	switch {
	case errors.Is(err, domain.ErrJPEGValidationFailed):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JPEG", "input is not a valid jpeg")
	case errors.Is(err, domain.ErrPolicyDenied):
		resp := errorResponse{Code: "POLICY_DENIED", Message: "capture policy denied"}
		if detail != "" {
			resp.Details = map[string]any{"deny_codes": detail}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, resp)
	case errors.Is(err, domain.ErrNonceReplayed):
		writeErrorCode(c, http.StatusConflict, "NONCE_REPLAYED", "capture nonce was already used")
	case errors.Is(err, domain.ErrManifestBuildFailed):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_MANIFEST", "manifest build failed")
	case errors.Is(err, domain.ErrCertificate):
		writeErrorCode(c, http.StatusInternalServerError, "CERTIFICATE_ERROR", "signer certificate unavailable")
	case errors.Is(err, domain.ErrSigningFailed):
		writeErrorCode(c, http.StatusInternalServerError, "SIGNING_FAILED", "signing failed")
	case errors.Is(err, domain.ErrJPEGEmbedFailed):
		writeErrorCode(c, http.StatusInternalServerError, "EMBED_FAILED", "manifest embedding failed")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}

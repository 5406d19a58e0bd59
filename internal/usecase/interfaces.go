package usecase

import (
	"context"

	"attestd/internal/domain"
)

type PolicyEngine interface {
	Evaluate(ctx context.Context, input domain.PolicyInput) (domain.PolicyEvaluation, error)
}

type AttestationStore interface {
	Record(ctx context.Context, rec domain.AttestationRecord) (string, error)
}

package service

import (
	"context"
	"errors"
	"testing"

	"dira/pkg/classifier"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/logger"
)

type mockClassifier struct {
	inferFunc func(ctx context.Context, req classifier.Request, out any) error
	requests  []classifier.Request
}

func (m *mockClassifier) Infer(ctx context.Context, req classifier.Request, out any) error {
	m.requests = append(m.requests, req)
	if m.inferFunc != nil {
		return m.inferFunc(ctx, req, out)
	}
	return nil
}

func extraction(valid bool, rent *float64) func(ctx context.Context, req classifier.Request, out any) error {
	return func(ctx context.Context, req classifier.Request, out any) error {
		address := "12 Dizengoff St, Tel Aviv"
		*out.(*contractExtraction) = contractExtraction{
			IsValidContract: valid,
			MonthlyRent:     rent,
			Address:         &address,
			Confidence:      0.92,
			Reason:          "lease contract with stated rent",
		}
		return nil
	}
}

func rentPtr(v float64) *float64 { return &v }

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{Log: log}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func TestVerify_Verdicts(t *testing.T) {
	tests := []struct {
		name          string
		valid         bool
		extracted     *float64
		declared      float64
		wantVerdict   string
		wantDeviation *float64
	}{
		{
			name:        "invalid document",
			valid:       false,
			extracted:   nil,
			declared:    1000,
			wantVerdict: VerdictInvalidDocument,
		},
		{
			name:        "valid but rent unreadable goes to manual review",
			valid:       true,
			extracted:   nil,
			declared:    1000,
			wantVerdict: VerdictManualReview,
		},
		{
			name:          "exact match approves",
			valid:         true,
			extracted:     rentPtr(1000),
			declared:      1000,
			wantVerdict:   VerdictApproved,
			wantDeviation: rentPtr(0),
		},
		{
			name:          "deviation just under five percent approves",
			valid:         true,
			extracted:     rentPtr(1049),
			declared:      1000,
			wantVerdict:   VerdictApproved,
			wantDeviation: rentPtr(4.9),
		},
		{
			name:          "deviation of exactly five percent is a mismatch",
			valid:         true,
			extracted:     rentPtr(1050),
			declared:      1000,
			wantVerdict:   VerdictManualReview,
			wantDeviation: rentPtr(5),
		},
		{
			name:          "declared rent below extracted also deviates",
			valid:         true,
			extracted:     rentPtr(900),
			declared:      1000,
			wantVerdict:   VerdictManualReview,
			wantDeviation: rentPtr(10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := &mockClassifier{inferFunc: extraction(tt.valid, tt.extracted)}
			svc := NewVerificationService(cls, testConfig())

			result, err := svc.Verify(context.Background(), "https://cdn.example.com/contracts/lease.pdf", tt.declared)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Verdict != tt.wantVerdict {
				t.Errorf("expected verdict %s, got %s", tt.wantVerdict, result.Verdict)
			}
			if tt.wantDeviation == nil {
				if result.DeviationPercent != nil {
					t.Errorf("expected no deviation, got %.2f", *result.DeviationPercent)
				}
			} else if result.DeviationPercent == nil {
				t.Error("expected a deviation percent")
			} else if diff := *result.DeviationPercent - *tt.wantDeviation; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("expected deviation %.2f, got %.10f", *tt.wantDeviation, *result.DeviationPercent)
			}
		})
	}
}

func TestVerify_SendsDocumentToClassifier(t *testing.T) {
	cls := &mockClassifier{inferFunc: extraction(true, rentPtr(1000))}
	svc := NewVerificationService(cls, testConfig())

	_, err := svc.Verify(context.Background(), "https://cdn.example.com/contracts/lease.pdf", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cls.requests) != 1 {
		t.Fatalf("expected 1 classifier call, got %d", len(cls.requests))
	}
	req := cls.requests[0]
	if req.FileURI != "https://cdn.example.com/contracts/lease.pdf" {
		t.Errorf("unexpected file URI %s", req.FileURI)
	}
	if req.FileMIMEType != "application/pdf" {
		t.Errorf("expected application/pdf MIME type, got %s", req.FileMIMEType)
	}
	if req.Schema == nil {
		t.Error("expected a response schema")
	}
}

func TestVerify_InvalidInput(t *testing.T) {
	svc := NewVerificationService(&mockClassifier{}, testConfig())

	_, err := svc.Verify(context.Background(), "", 1000)
	assertCode(t, err, apperrors.CodeInvalidInput)

	_, err = svc.Verify(context.Background(), "https://cdn.example.com/lease.pdf", 0)
	assertCode(t, err, apperrors.CodeInvalidInput)

	_, err = svc.Verify(context.Background(), "ftp://cdn.example.com/lease.pdf", 1000)
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestVerify_ClassifierFailurePropagates(t *testing.T) {
	cls := &mockClassifier{
		inferFunc: func(ctx context.Context, req classifier.Request, out any) error {
			return apperrors.Classifier("model unavailable", errors.New("503"))
		},
	}
	svc := NewVerificationService(cls, testConfig())

	_, err := svc.Verify(context.Background(), "https://cdn.example.com/lease.pdf", 1000)
	assertCode(t, err, apperrors.CodeClassifier)
}

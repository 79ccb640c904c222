package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing items")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing items" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "items"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeNotFound, "sale not found")
	if got := As(err); got == nil || got.Code() != CodeNotFound {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsCodeFollowsWrappedChain(t *testing.T) {
	err := fmt.Errorf("create sale: %w", New(CodeConflict, "already sold"))
	if !IsCode(err, CodeConflict) {
		t.Fatalf("expected conflict code through wrapping")
	}
	if IsCode(err, CodeValidation) {
		t.Fatalf("unexpected validation match")
	}
	if IsCode(stdErrors.New("plain"), CodeConflict) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("connection reset")
	err := Wrap(CodeDependency, cause, "load sale")

	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dependency code, got %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(dump.Chain))
	}
	if dump.PGCode != "" {
		t.Fatalf("expected no pg code for plain errors")
	}
}

func TestWrapDBClassifiesConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       Code
		constraint string
	}{
		{name: "check", err: &pgconn.PgError{Code: "23514", ConstraintName: "sale_items_price_check"}, code: CodeValidation, constraint: "sale_items_price_check"},
		{name: "unique", err: &pgconn.PgError{Code: "23505", ConstraintName: "iccid_stock_iccid_key"}, code: CodeConflict, constraint: "iccid_stock_iccid_key"},
		{name: "foreign key", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), code: CodeConflict},
		{name: "other pg error", err: &pgconn.PgError{Code: "40001"}, code: CodeDependency},
		{name: "plain", err: stdErrors.New("connection reset"), code: CodeDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapDB(tt.err, "create sale items")
			if wrapped.Code() != tt.code {
				t.Fatalf("expected %s got %s", tt.code, wrapped.Code())
			}
			if !stdErrors.Is(wrapped, tt.err) {
				t.Fatalf("cause not preserved")
			}
			if tt.constraint == "" {
				if wrapped.Details() != nil {
					t.Fatalf("unexpected details %v", wrapped.Details())
				}
				return
			}
			details, ok := wrapped.Details().(map[string]any)
			if !ok || details["constraint"] != tt.constraint {
				t.Fatalf("expected constraint %q in details, got %v", tt.constraint, wrapped.Details())
			}
		})
	}
}

func TestDumpCollectsPGDetails(t *testing.T) {
	err := WrapDB(&pgconn.PgError{Code: "23514", ConstraintName: "sale_items_price_check", TableName: "sale_items"}, "create sale items")

	dump := Dump(err)
	if dump.Code != CodeValidation || dump.PGCode != "23514" || dump.PGTable != "sale_items" {
		t.Fatalf("unexpected dump %+v", dump)
	}
}

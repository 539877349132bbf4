package response

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/deadpanpulley/alarm-nosnooze/pkg/errors"
)

func TestErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"bare definition", errors.AlarmNotFound, http.StatusNotFound},
		{"wrapped definition", fmt.Errorf("%w: redis get: connection refused", errors.StorageFailure), http.StatusInternalServerError},
		{"wrapped not-found keeps status", fmt.Errorf("lookup: %w", errors.AlarmNotFound), http.StatusNotFound},
		{"wrapped busy", fmt.Errorf("evaluate: %w", errors.EvaluateBusy), http.StatusConflict},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := errorToHTTPStatus(tc.err); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestDefinitionOfUnwraps(t *testing.T) {
	wrapped := fmt.Errorf("%w: key alarms:all", errors.StorageFailure)
	def, ok := definitionOf(wrapped)
	if !ok {
		t.Fatal("wrapped definition not recognized")
	}
	// 错误码要从包装里透出来，而不是退化成 INTERNAL_ERROR
	if def.Code != errors.StorageFailure.Code {
		t.Fatalf("code = %q, want %q", def.Code, errors.StorageFailure.Code)
	}

	if _, ok := definitionOf(fmt.Errorf("boom")); ok {
		t.Fatal("plain error must not match a definition")
	}
}

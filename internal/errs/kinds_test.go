package errs

import (
	"errors"
	"net/http"
	"testing"
)

func TestKindOfFindsKindThroughWrapChain(t *testing.T) {
	base := WithKind(errors.New("missing"), KindNotFound)
	wrapped := Wrap(Wrap(base, "load document"), "handle request")

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf() = %v, want KindNotFound", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Fatalf("KindOf(plain) = %v, want KindUnknown", got)
	}
	if WithKind(nil, KindValidation) != nil {
		t.Fatalf("WithKind(nil) should be nil")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	testCases := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindUpstreamEmpty, http.StatusNotFound},
		{KindPersistence, http.StatusInternalServerError},
		{KindUnknown, http.StatusInternalServerError},
	}
	for _, testCase := range testCases {
		err := WithKind(errors.New("boom"), testCase.kind)
		if got := HTTPStatus(err); got != testCase.want {
			t.Fatalf("HTTPStatus(kind %v) = %d, want %d", testCase.kind, got, testCase.want)
		}
	}
}

package vectorstore

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{NewError(KindAlreadyExists, "ensure_collection", base), KindAlreadyExists},
		{NewError(KindNotFound, "search", base), KindNotFound},
		{NewError(KindDimensionMismatch, "upsert", base), KindDimensionMismatch},
		{NewError(KindUnavailable, "count", base), KindUnavailable},
		{base, KindUnknown},
		{nil, KindUnknown},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("ensure collection: %w", NewError(KindAlreadyExists, "ensure_collection", errors.New("409")))
	if !IsAlreadyExists(err) {
		t.Error("wrapped store error should keep its kind")
	}
	if IsNotFound(err) || IsUnavailable(err) {
		t.Error("wrong kind matched")
	}
}

func TestStoreError_Unwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := NewError(KindUnavailable, "upsert", base)
	if !errors.Is(err, base) {
		t.Error("StoreError should unwrap to the underlying error")
	}
}

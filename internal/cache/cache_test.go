package cache

import (
	"testing"

	"call-insights-go/internal/types"
)

func TestMemory(t *testing.T) {
	c := NewMemory()

	if _, ok := c.Get("call1.mp3"); ok {
		t.Error("empty cache should miss")
	}

	c.Put("call1.mp3", types.State{CallSummary: "first"})
	c.Put("call1.mp3", types.State{CallSummary: "second"})

	st, ok := c.Get("call1.mp3")
	if !ok {
		t.Fatal("expected hit")
	}
	if st.CallSummary != "second" {
		t.Errorf("CallSummary = %q, want latest write", st.CallSummary)
	}
}

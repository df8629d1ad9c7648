package llm

import (
	"errors"
	"testing"
)

func TestNew_UnsupportedOption(t *testing.T) {
	for _, option := range []string{"", "Claude", "azure", "openai "} {
		_, err := New(option)
		if !errors.Is(err, ErrUnsupportedBackend) {
			t.Errorf("New(%q) error = %v, want ErrUnsupportedBackend", option, err)
		}
	}
}

func TestNew_SupportedOptions(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("GROQ_API_KEY", "test-key")

	for _, option := range []string{OptionOpenAI, OptionGroq} {
		b, err := New(option)
		if err != nil {
			t.Errorf("New(%q): %v", option, err)
		}
		if b == nil {
			t.Errorf("New(%q) returned nil backend", option)
		}
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := New(OptionOpenAI); err == nil {
		t.Error("New should fail without an API key")
	}
}

package logger

import (
	"net/http/httptest"
	"testing"
)

func TestWithFile(t *testing.T) {
	entry := New().WithFile("call1.mp3")
	if entry.Data["audio_file"] != "call1.mp3" {
		t.Errorf("audio_file = %v, want %q", entry.Data["audio_file"], "call1.mp3")
	}
}

func TestWithRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/process-calls", nil)
	entry := New().WithRequest(r)
	if entry.Data["method"] != "POST" || entry.Data["path"] != "/process-calls" {
		t.Errorf("request fields = %v", entry.Data)
	}
	if entry.Data["req_id"] == "" {
		t.Error("req_id should be generated when the header is absent")
	}

	r.Header.Set("X-Request-ID", "abc-123")
	entry = New().WithRequest(r)
	if entry.Data["req_id"] != "abc-123" {
		t.Errorf("req_id = %v, want header value", entry.Data["req_id"])
	}
}

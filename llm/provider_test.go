package llm

import (
	"fmt"
	"reflect"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		wantType string
	}{
		{"siliconflow", "*llm.siliconFlowProvider"},
		{"custom", "*llm.openAICompatProvider"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			cfg := Config{
				Provider: tt.provider,
				Model:    "test-model",
			}
			p, err := NewProvider(cfg)
			if err != nil {
				t.Fatalf("NewProvider(%q) returned error: %v", tt.provider, err)
			}
			gotType := fmt.Sprintf("%T", p)
			if gotType != tt.wantType {
				t.Errorf("NewProvider(%q) type = %s, want %s", tt.provider, gotType, tt.wantType)
			}
		})
	}
}

func TestNewProviderUnknown(t *testing.T) {
	cfg := Config{
		Provider: "doesnotexist",
		Model:    "test-model",
	}
	_, err := NewProvider(cfg)
	if err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
	want := "unknown llm provider: doesnotexist"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNewProviderEmpty(t *testing.T) {
	cfg := Config{
		Provider: "",
		Model:    "test-model",
	}
	_, err := NewProvider(cfg)
	if err == nil {
		t.Fatal("expected error for empty provider, got nil")
	}
	want := "llm provider not specified"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

// TestSiliconFlowDefaultBaseURL verifies that an empty BaseURL resolves
// to the hosted platform endpoint, while an explicit one is kept.
func TestSiliconFlowDefaultBaseURL(t *testing.T) {
	p := NewSiliconFlow(Config{Provider: "siliconflow", Model: "m"})
	got := reflect.ValueOf(p).Elem().
		FieldByName("base").FieldByName("cfg").FieldByName("BaseURL").String()
	if got != "https://api.siliconflow.cn" {
		t.Errorf("BaseURL = %q, want %q", got, "https://api.siliconflow.cn")
	}

	p = NewSiliconFlow(Config{Provider: "siliconflow", Model: "m", BaseURL: "http://localhost:9999"})
	got = reflect.ValueOf(p).Elem().
		FieldByName("base").FieldByName("cfg").FieldByName("BaseURL").String()
	if got != "http://localhost:9999" {
		t.Errorf("BaseURL = %q, want %q", got, "http://localhost:9999")
	}
}

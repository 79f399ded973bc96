package env

import "testing"

func TestDetectMode(t *testing.T) {
	tests := []struct {
		value string
		want  Mode
	}{
		{value: "1", want: ModeDev},
		{value: "true", want: ModeDev},
		{value: "0", want: ModeProd},
		{value: "", want: ModeProd},
		{value: "nonsense", want: ModeProd},
	}
	for _, tt := range tests {
		t.Setenv("STUDIO_DEV", tt.value)
		if got := DetectMode(); got != tt.want {
			t.Errorf("DetectMode() with %q = %v, want %v", tt.value, got, tt.want)
		}
	}
}

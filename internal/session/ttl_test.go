package session

import "testing"

func TestParseTTL(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"30s", 30, false},
		{"5m", 300, false},
		{"1h", 3600, false},
		{"2d", 172800, false},
		{"60", 60, false},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTTL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTTL(%q) error = nil, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTTL(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTTL(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

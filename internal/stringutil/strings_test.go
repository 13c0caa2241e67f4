package stringutil

import "testing"

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Valid digits", "123456", true},
		{"Leading zero", "007", true},
		{"Empty string", "", false},
		{"Contains letter", "123a456", false},
		{"Contains space", "123 456", false},
		{"Only letters", "abc", false},
		{"Special chars", "123-456", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsNumeric(tt.input)
			if got != tt.want {
				t.Errorf("IsNumeric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnaccent(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Càng", "cang"},
		{"ĐẢO SỐ", "dao so"},
		{"hôm nay", "hom nay"},
		{"Phong Thủy", "phong thuy"},
		{"xiên 2", "xien 2"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Unaccent(tt.input); got != tt.want {
				t.Errorf("Unaccent(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Hôm   Nay ", "hom nay"},
		{"HƯỚNG\tDẪN", "huong dan"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeKeyword(tt.input); got != tt.want {
				t.Errorf("NormalizeKeyword(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHasAnyPrefix(t *testing.T) {
	if !HasAnyPrefix("/xien 3", "/xien", "xien") {
		t.Error("expected /xien prefix to match")
	}
	if HasAnyPrefix("dao 12", "/dao") {
		t.Error("unexpected match")
	}
	if HasAnyPrefix("anything") {
		t.Error("no prefixes must not match")
	}
}

func TestCutFirstLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHead string
		wantBody string
	}{
		{"single line", "/xien 3", "/xien 3", ""},
		{"two lines", "/xien 3\n11 22 33", "/xien 3", "11 22 33"},
		{"crlf", "cang: 1 3\r\n12 34\r\n56", "cang: 1 3", "12 34\n56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			head, body := CutFirstLine(tt.input)
			if head != tt.wantHead || body != tt.wantBody {
				t.Errorf("CutFirstLine(%q) = (%q, %q), want (%q, %q)", tt.input, head, body, tt.wantHead, tt.wantBody)
			}
		})
	}
}

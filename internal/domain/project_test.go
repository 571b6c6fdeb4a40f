package domain

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "lectures", "lectures"},
		{"spaces and punctuation", "My Project!", "My_Project_"},
		{"path separators", `a/b\c`, "a_b_c"},
		{"quoting characters", `say "hi"`, "say__hi_"},
		{"windows reserved", "a:b*c?d<e>f|g", "a_b_c_d_e_f_g"},
		{"already sanitized", "My_Project_", "My_Project_"},
		{"unicode", "café", "caf_"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeName_Idempotent(t *testing.T) {
	inputs := []string{"My Project!", `a/b\c:d`, "plain", "", "weird\t\nname", "été 2024?"}

	for _, input := range inputs {
		once := SanitizeName(input)
		twice := SanitizeName(once)
		if once != twice {
			t.Errorf("SanitizeName not idempotent for %q: %q != %q", input, once, twice)
		}
		for _, r := range once {
			if !isSafeNameRune(r) {
				t.Errorf("SanitizeName(%q) left unsafe rune %q", input, r)
			}
		}
	}
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "My Project", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("a", MaxProjectNameLen+1), true},
		{"at limit", strings.Repeat("a", MaxProjectNameLen), false},
		{"sanitizes to nothing", "???!!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProjectName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProjectDescription(t *testing.T) {
	if err := ValidateProjectDescription(strings.Repeat("x", MaxProjectDescriptionLen)); err != nil {
		t.Errorf("description at limit should be valid, got %v", err)
	}
	if err := ValidateProjectDescription(strings.Repeat("x", MaxProjectDescriptionLen+1)); err == nil {
		t.Error("description over limit should be rejected")
	}
}

func TestIsAllowedAudioFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"talk.mp3", true},
		{"talk.MP3", true},
		{"lecture.m4a", true},
		{"video.mp4", true},
		{"audio.ogg", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := IsAllowedAudioFile(tt.filename); got != tt.want {
				t.Errorf("IsAllowedAudioFile(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

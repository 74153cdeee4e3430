package formats

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Lowercase", "png", "png"},
		{"Uppercase", "PNG", "png"},
		{"LeadingDot", ".jpg", "jpg"},
		{"Whitespace", " webp ", "webp"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		tag  string
		want Family
	}{
		{"png", FamilyImage},
		{"heic", FamilyImage},
		{"mp3", FamilyAudio},
		{"mp4", FamilyVideo},
		{"webm", FamilyVideo},
		{"gif", FamilyImage}, // image takes precedence over video
		{"pdf", FamilyDocument},
		{"xyz", FamilyOther},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := FamilyOf(tt.tag); got != tt.want {
				t.Errorf("FamilyOf(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"jpg", "image/jpeg"},
		{"jpeg", "image/jpeg"},
		{"webp", "image/webp"},
		{"avif", "image/avif"},
		{"png", "image/png"},
		{"mp4", "video/mp4"},
		{"mp3", "audio/mpeg"},
		{".GIF", "image/gif"},
		{"unknown", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			if got := MIMEType(tt.tag); got != tt.want {
				t.Errorf("MIMEType(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestHEIFFamilyMembers(t *testing.T) {
	for _, tag := range []string{"heic", "heif", "avif"} {
		if !HEIFFamily[tag] {
			t.Errorf("Expected %q to be in the HEIF family", tag)
		}
	}
	if HEIFFamily["png"] {
		t.Error("png must not be in the HEIF family")
	}
}

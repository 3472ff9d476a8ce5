package container

import "testing"

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
		key     string
		want    *string
	}{
		{"match", []string{"FOO=1", "HASSIO_VERSION=2021.1.0", "BAR=x"}, "HASSIO_VERSION", strPtr("2021.1.0")},
		{"no match", []string{"FOO=1", "BAR=x"}, "HASSIO_VERSION", nil},
		{"empty list", nil, "HASSIO_VERSION", nil},
		{"prefix is not a match", []string{"HASSIO_VERSION_OLD=1"}, "HASSIO_VERSION", nil},
		{"value with equals", []string{"OPTS=a=b"}, "OPTS", strPtr("a=b")},
		{"empty value", []string{"HASSIO_VERSION="}, "HASSIO_VERSION", strPtr("")},
		{"entry without separator", []string{"HASSIO_VERSION"}, "HASSIO_VERSION", nil},
		{"first match wins", []string{"V=1", "V=2"}, "V", strPtr("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractValue(tt.entries, tt.key)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ExtractValue = %q, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("ExtractValue = nil, want %q", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ExtractValue = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }

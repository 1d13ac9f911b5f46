package safeurl

import (
	"errors"
	"testing"
)

func TestValidate_Schemes(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"https://example.com/page", nil},
		{"http://localhost:3000/app", nil},
		{"file:///etc/passwd", ErrUnsafeScheme},
		{"ftp://example.com", ErrUnsafeScheme},
		{"javascript:alert(1)", ErrUnsafeScheme},
	}
	for _, tt := range tests {
		err := Validate(tt.url, Options{})
		if tt.wantErr == nil && err != nil {
			t.Errorf("Validate(%q) = %v, want nil", tt.url, err)
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Validate(%q) = %v, want %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestValidate_NoHost(t *testing.T) {
	if err := Validate("http://", Options{}); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestValidate_PrivateHostsAllowedByDefault(t *testing.T) {
	for _, u := range []string{
		"http://127.0.0.1:8080",
		"http://localhost:3000",
		"http://192.168.1.10",
	} {
		if err := Validate(u, Options{}); err != nil {
			t.Errorf("Validate(%q) = %v, want nil (dev servers allowed)", u, err)
		}
	}
}

func TestValidate_BlockPrivateHosts(t *testing.T) {
	opts := Options{BlockPrivateHosts: true}

	for _, u := range []string{
		"http://127.0.0.1:8080",
		"http://10.0.0.5",
		"http://192.168.1.10",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]:9000",
	} {
		if err := Validate(u, opts); !errors.Is(err, ErrPrivateHost) {
			t.Errorf("Validate(%q) = %v, want ErrPrivateHost", u, err)
		}
	}

	if err := Validate("https://93.184.216.34", opts); err != nil {
		t.Errorf("public IP rejected: %v", err)
	}
}

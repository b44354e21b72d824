package storage

import (
	"strings"
	"testing"
)

func testClient() *Client {
	return &Client{bucket: "uploads", publicBase: "https://files.example.com"}
}

func TestInferContentType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"shot.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"modern.webp", "image/webp"},
		{"weird.bmp", "image/jpeg"},
		{"noext", "image/jpeg"},
	}
	for _, tt := range tests {
		if got := InferContentType(tt.name); got != tt.want {
			t.Errorf("InferContentType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestMatchContentTypeRejectsUnknown(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"photo.jpg", "image/jpeg", true},
		{"shot.PNG", "image/png", true},
		{"modern.webp", "image/webp", true},
		{"malware.exe", "", false},
		{"weird.bmp", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchContentType(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MatchContentType(%q) = (%q, %t), want (%q, %t)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestObjectNameShape(t *testing.T) {
	a := objectName("leak.PNG", FolderReports)
	if !strings.HasPrefix(a, "report-") {
		t.Errorf("report object %q missing report- prefix", a)
	}
	if !strings.HasSuffix(a, ".png") {
		t.Errorf("object %q should keep lowercased extension", a)
	}
	b := objectName("done.jpg", FolderProofs)
	if !strings.HasPrefix(b, "proof-") {
		t.Errorf("proof object %q missing proof- prefix", b)
	}
	if a == objectName("leak.PNG", FolderReports) {
		t.Error("two names for the same input collided")
	}
}

func TestResolveLegacyURL(t *testing.T) {
	c := testClient()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://files.example.com/uploads/reports/report-1.jpg", "https://files.example.com/uploads/reports/report-1.jpg"},
		{"/uploads/report-1700000000-abc.jpg", "https://files.example.com/uploads/reports/report-1700000000-abc.jpg"},
		{"/uploads/proof-1700000000-def.png", "https://files.example.com/uploads/proofs/proof-1700000000-def.png"},
	}
	for _, tt := range tests {
		if got := c.ResolveLegacyURL(tt.in); got != tt.want {
			t.Errorf("ResolveLegacyURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	c := testClient()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://files.example.com/uploads/reports/report-1.jpg", "reports/report-1.jpg"},
		{"https://elsewhere.example.com/other-bucket/x.jpg", ""},
		{"/uploads/report-2.jpg", "reports/report-2.jpg"},
		{"/uploads/proof-2.jpg", "proofs/proof-2.jpg"},
	}
	for _, tt := range tests {
		if got := c.Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

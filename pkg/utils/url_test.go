package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare domain", "example.com", "example.com"},
		{"uppercase", "EXAMPLE.COM", "example.com"},
		{"www stripped", "www.example.com", "example.com"},
		{"scheme stripped", "https://example.com", "example.com"},
		{"scheme www path", "https://WWW.Example.com/contact/", "example.com"},
		{"query stripped", "example.com?ref=x", "example.com"},
		{"fragment stripped", "example.com#top", "example.com"},
		{"trailing dot", "example.com.", "example.com"},
		{"whitespace", "  example.com  ", "example.com"},
		{"subdomain kept", "shop.example.co.uk", "shop.example.co.uk"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDomain(tt.input))
		})
	}
}

func TestCompanyNameFromDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "acme.com", "Acme"},
		{"dashed", "acme-labs.io", "Acme Labs"},
		{"underscored", "acme_corp.com", "Acme Corp"},
		{"full url input", "https://www.blue-sky.co.uk/about", "Blue Sky"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompanyNameFromDomain(tt.input))
		})
	}
}

func TestToAbsoluteURL(t *testing.T) {
	base, err := url.Parse("https://example.com/contact/")
	require.NoError(t, err)

	abs, err := ToAbsoluteURL(base, "/assets/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/assets/logo.png", abs)

	abs, err = ToAbsoluteURL(base, "team.html")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/contact/team.html", abs)

	abs, err = ToAbsoluteURL(base, "//cdn.example.com/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", abs)
}

package extractor

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactPageHTML = `<!DOCTYPE html>
<html>
<head><title>Acme Corp</title>
<script>var tracking = "admin@tracker.invalid";</script>
</head>
<body>
  <img src="/assets/logo.png" alt="Acme logo">
  <nav>
    <a href="https://x.com/acme">X</a>
    <a href="https://twitter.com/acme_ceo">CEO on Twitter</a>
    <a href="https://www.linkedin.com/company/acme">LinkedIn</a>
    <a href="https://youtube.com/@acme">YouTube</a>
  </nav>
  <main>
    <p>Reach us at info@example.com or support@example.COM for help.</p>
    <a href="mailto:info@example.com">Email us</a>
    <a href="tel:+15551234567">Call us</a>
  </main>
  <footer>
    <p>Acme Corp, 1 Main St. Phone: (212) 555-0147</p>
  </footer>
</body>
</html>`

func TestExtractContactPage(t *testing.T) {
	base, err := url.Parse("https://acme.com")
	require.NoError(t, err)

	record := Extract(contactPageHTML, base)

	assert.True(t, record.Success)
	assert.Empty(t, record.Error)

	// mailto and body mention of info@ collapse into one entry; script text
	// is never scanned.
	assert.Equal(t, []string{"info@example.com", "support@example.com"}, record.Emails)

	assert.Equal(t, []string{"(212) 555-0147", "+15551234567"}, record.Phones)

	assert.Equal(t, "https://x.com/acme", record.SocialLinks["twitter"])
	assert.Equal(t, "https://www.linkedin.com/company/acme", record.SocialLinks["linkedin"])

	// The second twitter URL and the unnamed platform land in OtherSocials.
	assert.Equal(t, []string{"https://twitter.com/acme_ceo", "https://youtube.com/@acme"}, record.OtherSocials)

	assert.Equal(t, "https://acme.com/assets/logo.png", record.LogoURL)
}

func TestExtractIsDeterministic(t *testing.T) {
	base, err := url.Parse("https://acme.com")
	require.NoError(t, err)

	first := Extract(contactPageHTML, base)
	second := Extract(contactPageHTML, base)
	assert.Equal(t, first, second)
}

func TestExtractEmptyPage(t *testing.T) {
	record := Extract("<html><body></body></html>", nil)

	assert.True(t, record.Success)
	assert.Empty(t, record.Emails)
	assert.Empty(t, record.Phones)
	assert.Empty(t, record.SocialLinks)
	assert.Empty(t, record.OtherSocials)
	assert.Empty(t, record.LogoURL)
}

func TestExtractRelativeSocialLinksWithoutBase(t *testing.T) {
	html := `<html><body><a href="/contact">Contact</a><a href="https://instagram.com/acme">IG</a></body></html>`
	record := Extract(html, nil)

	assert.Equal(t, "https://instagram.com/acme", record.SocialLinks["instagram"])
	assert.Empty(t, record.OtherSocials)
}

func TestClassifySocialLink(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"linkedin profile", "https://www.linkedin.com/in/jane-doe", "linkedin"},
		{"linkedin company", "https://linkedin.com/company/acme", "linkedin"},
		{"x maps to twitter", "https://x.com/acme", "twitter"},
		{"twitter host", "https://twitter.com/acme", "twitter"},
		{"tiktok handle", "https://www.tiktok.com/@acme", "tiktok"},
		{"subdomain match", "https://de-de.facebook.com/acme", "facebook"},
		{"youtube", "https://youtube.com/@acme", "youtube"},
		{"telegram short host", "https://t.me/acme", "telegram"},
		{"unknown host", "https://example.com/about", ""},
		{"lookalike host rejected", "https://nottwitter.com/acme", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifySocialLink(tt.url))
		})
	}
}

func TestExtractFooterFallbackSelectors(t *testing.T) {
	html := `<html><body>
	  <div class="site-footer">Call (212) 555-0147 today</div>
	</body></html>`
	record := Extract(html, nil)

	assert.Equal(t, []string{"(212) 555-0147"}, record.Phones)
}

func TestExtractIgnoresBodyPhonesOutsideFooter(t *testing.T) {
	html := `<html><body>
	  <p>Our office moved in 2023. Order ref 500813-1713-47.</p>
	  <p>Call (212) 555-0147</p>
	</body></html>`
	record := Extract(html, nil)

	// No footer on the page means no phone extraction at all.
	assert.Empty(t, record.Phones)
}

package extractor

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/pkg/utils"
)

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`(\+?\d{1,4}[-.\s()]?)?\(?\d{2,4}\)?[-.\s()]?\d{2,4}[-.\s()]?\d{2,5}`)
)

// Text-matched phones use the strict digit window; tel: links are trusted
// more and get a wider one.
const (
	minPhoneDigits    = 7
	maxPhoneDigits    = 15
	minTelLinkDigits  = 6
	maxTelLinkDigits  = 20
	footerSelectorAlt = `.footer, #footer, [class*="site-footer"], [id*="site-footer"], [role="contentinfo"]`
)

// socialHosts maps platform-identifying hostnames to platform names. The
// named platforms surface as ContactRecord.SocialLinks keys; everything else
// recognized here lands in OtherSocials.
var socialHosts = map[string]string{
	"twitter.com":     "twitter",
	"x.com":           "twitter",
	"facebook.com":    "facebook",
	"fb.com":          "facebook",
	"instagram.com":   "instagram",
	"linkedin.com":    "linkedin",
	"tiktok.com":      "tiktok",
	"youtube.com":     "youtube",
	"youtu.be":        "youtube",
	"pinterest.com":   "pinterest",
	"snapchat.com":    "snapchat",
	"reddit.com":      "reddit",
	"tumblr.com":      "tumblr",
	"whatsapp.com":    "whatsapp",
	"wa.me":           "whatsapp",
	"t.me":            "telegram",
	"telegram.me":     "telegram",
	"discord.gg":      "discord",
	"discord.com":     "discord",
	"medium.com":      "medium",
	"github.com":      "github",
	"threads.net":     "threads",
	"mastodon.social": "mastodon",
}

// namedPlatforms are promoted to their own SocialLinks entries; other
// recognized platforms are kept as raw URLs under OtherSocials.
var namedPlatforms = map[string]bool{
	"linkedin":  true,
	"twitter":   true,
	"instagram": true,
	"tiktok":    true,
	"facebook":  true,
}

// Extract parses page HTML into a partial ContactRecord. It is stateless and
// does no I/O; given identical input it produces byte-identical output.
func Extract(pageHTML string, base *url.URL) *entity.ContactRecord {
	record := entity.NewContactRecord()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		record.Error = "malformed page content: " + err.Error()
		return record
	}

	emails := map[string]string{} // normalized key -> display form
	phones := map[string]bool{}
	others := map[string]bool{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		if rest, ok := strings.CutPrefix(href, "mailto:"); ok {
			addEmail(emails, mailtoTarget(rest))
			return
		}
		if rest, ok := strings.CutPrefix(href, "tel:"); ok {
			candidate := strings.TrimSpace(rest)
			if PlausiblePhone(candidate, minTelLinkDigits, maxTelLinkDigits) {
				phones[candidate] = true
			}
			// A tel: href can double as a whatsapp/telegram link, so fall
			// through to social classification.
		}

		abs := absolutize(href, base)
		if abs == "" {
			return
		}
		platform := ClassifySocialLink(abs)
		switch {
		case platform == "":
			// Not a social link.
		case namedPlatforms[platform]:
			if existing, ok := record.SocialLinks[platform]; !ok {
				record.SocialLinks[platform] = abs
			} else if existing != abs {
				others[abs] = true
			}
		default:
			others[abs] = true
		}
	})

	// Script and style text would pollute the body scan.
	doc.Find("script, style").Remove()

	if body := doc.Find("body"); body.Length() > 0 {
		for _, match := range emailRegex.FindAllString(body.Text(), -1) {
			addEmail(emails, match)
		}
	}

	for _, candidate := range footerPhoneCandidates(doc) {
		if PlausiblePhone(candidate, minPhoneDigits, maxPhoneDigits) {
			phones[candidate] = true
		}
	}

	record.LogoURL = findLogoURL(doc, base)

	record.Emails = sortedValues(emails)
	record.Phones = sortedKeys(phones)
	record.OtherSocials = sortedKeys(others)
	record.Success = true
	return record
}

// ClassifySocialLink returns the platform name for a URL, or "" when the host
// matches no known platform.
func ClassifySocialLink(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return ""
	}
	for domain, platform := range socialHosts {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform
		}
	}
	return ""
}

// mailtoTarget strips query parameters and percent-encoding from a mailto
// href remainder.
func mailtoTarget(rest string) string {
	addr, _, _ := strings.Cut(rest, "?")
	if decoded, err := url.QueryUnescape(addr); err == nil {
		addr = decoded
	}
	return strings.TrimSpace(addr)
}

// addEmail records an address if it is well-formed, deduplicating
// case-insensitively on the domain part. The domain part is lower-cased; the
// local part keeps its original case.
func addEmail(emails map[string]string, candidate string) {
	if candidate == "" || emailRegex.FindString(candidate) != candidate {
		return
	}
	local, domain, ok := strings.Cut(candidate, "@")
	if !ok {
		return
	}
	normalized := local + "@" + strings.ToLower(domain)
	if _, exists := emails[normalized]; !exists {
		emails[normalized] = normalized
	}
}

// footerPhoneCandidates scans footer-scoped text only, to keep false
// positives from page body prose out of the phone set.
func footerPhoneCandidates(doc *goquery.Document) []string {
	footers := doc.Find("footer")
	if footers.Length() == 0 {
		footers = doc.Find(footerSelectorAlt)
	}
	if footers.Length() == 0 {
		return nil
	}

	var sb strings.Builder
	footers.Each(func(_ int, s *goquery.Selection) {
		sb.WriteString(s.Text())
		sb.WriteString(" ")
	})

	seen := map[string]bool{}
	var candidates []string
	for _, m := range phoneRegex.FindAllString(sb.String(), -1) {
		m = strings.TrimSpace(m)
		if m != "" && !seen[m] {
			seen[m] = true
			candidates = append(candidates, m)
		}
	}
	return candidates
}

func findLogoURL(doc *goquery.Document, base *url.URL) string {
	logo := ""
	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			return true
		}
		alt, _ := s.Attr("alt")
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		for _, attr := range []string{alt, class, id} {
			if strings.Contains(strings.ToLower(attr), "logo") {
				logo = src
				return false
			}
		}
		return true
	})
	if logo == "" {
		return ""
	}
	if abs := absolutize(logo, base); abs != "" {
		return abs
	}
	return logo
}

// absolutize resolves protocol-relative and path-relative hrefs against the
// page base. Unresolvable relative hrefs yield "".
func absolutize(href string, base *url.URL) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if base == nil {
		return ""
	}
	abs, err := utils.ToAbsoluteURL(base, href)
	if err != nil {
		return ""
	}
	return abs
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

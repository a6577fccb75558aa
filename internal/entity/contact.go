package entity

// ContactRecord holds the contact data extracted from a company website.
// Emails and Phones are sorted and deduplicated; SocialLinks maps a platform
// name to the first URL found for that platform. Unrecognized or duplicate
// social URLs are collected under OtherSocials.
type ContactRecord struct {
	Emails       []string          `json:"emails"`
	Phones       []string          `json:"phones"`
	SocialLinks  map[string]string `json:"social_links"`
	OtherSocials []string          `json:"other_socials,omitempty"`
	LogoURL      string            `json:"logo_url,omitempty"`
	Success      bool              `json:"success"`
	Error        string            `json:"error,omitempty"`
}

// NewContactRecord returns an empty record with initialized collections so
// callers never have to nil-check before appending.
func NewContactRecord() *ContactRecord {
	return &ContactRecord{
		Emails:      []string{},
		Phones:      []string{},
		SocialLinks: map[string]string{},
	}
}

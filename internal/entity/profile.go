package entity

// Platform identifies a social network targeted by executive profile discovery.
type Platform string

const (
	PlatformLinkedIn  Platform = "linkedin"
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// DiscoveryPlatforms is the fixed priority order in which platforms are
// searched. Every platform is attempted for every domain; the order carries
// no deduplication meaning.
var DiscoveryPlatforms = []Platform{
	PlatformLinkedIn,
	PlatformTwitter,
	PlatformInstagram,
	PlatformTikTok,
}

// ExecutiveProfile is one discovered social profile believed to belong to a
// company executive. Error and a populated ProfileURL are mutually exclusive.
type ExecutiveProfile struct {
	Platform    Platform `json:"platform"`
	ProfileURL  string   `json:"profile_url,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Headline    string   `json:"headline,omitempty"`
	Error       string   `json:"error,omitempty"`
}

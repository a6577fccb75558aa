package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/user/contact-finder/internal/entity"
)

// Named social columns, in output order.
var namedSocialColumns = []string{"linkedin", "twitter", "instagram", "facebook", "tiktok"}

// multiValueSeparator joins multiple values inside one CSV cell.
const multiValueSeparator = "; "

// Header returns the CSV column names for result export.
func Header() []string {
	cols := []string{"domain", "status", "emails", "phones"}
	for _, platform := range namedSocialColumns {
		cols = append(cols, "social_"+platform)
	}
	cols = append(cols, "other_socials", "logo_url")
	for _, platform := range entity.DiscoveryPlatforms {
		p := string(platform)
		cols = append(cols, "ceo_"+p+"_url", "ceo_"+p+"_name", "ceo_"+p+"_headline")
	}
	cols = append(cols, "error", "completed_at")
	return cols
}

// Row flattens one domain result into a CSV record matching Header.
func Row(result *entity.DomainResult) []string {
	row := []string{result.Domain, string(result.Status)}

	contact := result.Contact
	if contact == nil {
		contact = entity.NewContactRecord()
	}
	row = append(row,
		strings.Join(contact.Emails, multiValueSeparator),
		strings.Join(contact.Phones, multiValueSeparator),
	)
	for _, platform := range namedSocialColumns {
		row = append(row, contact.SocialLinks[platform])
	}
	row = append(row,
		strings.Join(contact.OtherSocials, multiValueSeparator),
		contact.LogoURL,
	)

	profilesByPlatform := map[entity.Platform]entity.ExecutiveProfile{}
	for _, p := range result.Profiles {
		if _, ok := profilesByPlatform[p.Platform]; !ok {
			profilesByPlatform[p.Platform] = p
		}
	}
	for _, platform := range entity.DiscoveryPlatforms {
		p := profilesByPlatform[platform]
		row = append(row, p.ProfileURL, p.DisplayName, p.Headline)
	}

	completedAt := ""
	if !result.CompletedAt.IsZero() {
		completedAt = result.CompletedAt.UTC().Format(time.RFC3339)
	}
	return append(row, result.Error, completedAt)
}

// Write streams the full result set as CSV.
func Write(w io.Writer, results []*entity.DomainResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, result := range results {
		if err := cw.Write(Row(result)); err != nil {
			return fmt.Errorf("writing csv row for %s: %w", result.Domain, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RollingWriter appends rows to an underlying writer as results arrive, so an
// interrupted run still leaves a usable partial export. Not safe for
// concurrent use.
type RollingWriter struct {
	cw          *csv.Writer
	headerDone  bool
	rowsWritten int
}

// NewRollingWriter wraps w for incremental export.
func NewRollingWriter(w io.Writer) *RollingWriter {
	return &RollingWriter{cw: csv.NewWriter(w)}
}

// Append writes the header on first use, then one row per call, flushing
// after each so the output is durable immediately.
func (r *RollingWriter) Append(result *entity.DomainResult) error {
	if !r.headerDone {
		if err := r.cw.Write(Header()); err != nil {
			return fmt.Errorf("writing csv header: %w", err)
		}
		r.headerDone = true
	}
	if err := r.cw.Write(Row(result)); err != nil {
		return fmt.Errorf("writing csv row for %s: %w", result.Domain, err)
	}
	r.cw.Flush()
	if err := r.cw.Error(); err != nil {
		return err
	}
	r.rowsWritten++
	return nil
}

// Rows returns how many result rows have been written.
func (r *RollingWriter) Rows() int {
	return r.rowsWritten
}

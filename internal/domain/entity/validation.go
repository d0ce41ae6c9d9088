package entity

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

// maxURLLength defines the maximum allowed length for webhook URLs.
const maxURLLength = 2048

// ValidateFrequency checks that a frequency value is one of the known
// enum values. The empty string is rejected: callers representing "not
// set" should skip validation instead.
func ValidateFrequency(f Frequency) error {
	switch f {
	case FrequencyInstant, FrequencyDaily, FrequencyWeekly:
		return nil
	}
	return &ValidationError{
		Field:   "frequency",
		Message: fmt.Sprintf("must be one of instant, daily, weekly; got %q", f),
	}
}

// ValidateWeeklyDay checks that a weekly-day index is in 0..6 (Monday=0).
func ValidateWeeklyDay(day int) error {
	if day < 0 || day > 6 {
		return &ValidationError{Field: "weekly_day", Message: "must be between 0 (Monday) and 6 (Sunday)"}
	}
	return nil
}

// ValidateTimezone checks that a timezone is a loadable IANA name.
func ValidateTimezone(tz string) error {
	if tz == "" {
		return &ValidationError{Field: "timezone", Message: "timezone is required"}
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return &ValidationError{Field: "timezone", Message: fmt.Sprintf("unknown IANA timezone %q", tz)}
	}
	return nil
}

// ValidateNotificationType checks the payload type enum.
func ValidateNotificationType(t string) error {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return nil
	}
	return &ValidationError{
		Field:   "type",
		Message: fmt.Sprintf("must be one of info, success, warning, error; got %q", t),
	}
}

// ValidateSchedule validates the fields of a partial schedule level.
// Unset fields are skipped; set fields must be individually valid.
func ValidateSchedule(s Schedule) error {
	if s.Frequency != "" {
		if err := ValidateFrequency(s.Frequency); err != nil {
			return err
		}
	}
	if s.Timezone != "" {
		if err := ValidateTimezone(s.Timezone); err != nil {
			return err
		}
	}
	if s.WeeklyDay != nil {
		if err := ValidateWeeklyDay(*s.WeeklyDay); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWebhookURL validates the format and safety of a user-supplied
// webhook URL. It checks that the URL is well-formed, uses HTTP/HTTPS,
// and has a valid host, and blocks private IP addresses to prevent SSRF
// through user-controlled delivery targets.
func ValidateWebhookURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "webhook_url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "webhook_url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "webhook_url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "webhook_url", Message: "URL must have a valid host"}
	}

	host := parsedURL.Hostname()
	ips, err := net.LookupIP(host)
	if err == nil && len(ips) > 0 {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return &ValidationError{
					Field:   "webhook_url",
					Message: "url cannot point to private network",
				}
			}
		}
	}

	return nil
}

// isPrivateIP checks if an IP address is in a private or restricted range.
// This blocks delivery targets on:
// - localhost (127.0.0.0/8, ::1)
// - link-local addresses (169.254.0.0/16, fe80::/10)
// - private networks (10.0.0.0/8, 172.16.0.0/12, 192.168.0.0/16)
// - cloud metadata endpoints (169.254.169.254)
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() {
		return true
	}

	privateIPv4Ranges := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"169.254.0.0/16",
	}

	for _, cidr := range privateIPv4Ranges {
		_, subnet, _ := net.ParseCIDR(cidr)
		if subnet.Contains(ip) {
			return true
		}
	}

	return false
}

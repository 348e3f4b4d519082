package model

import "time"

// User is an account holder. This is a pure domain model with no
// database-specific dependencies or tags; persistence lives in the
// repository layer.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	NormalizedEmail string `json:"-"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PasswordHash    string `json:"-"`

	// Case allowance state. Remaining is refilled to Total once the expire
	// window has elapsed since LastUpdated.
	TotalCaseAllowance       int       `json:"total_case_allowance"`
	CaseAllowanceRemaining   int       `json:"case_allowance_remaining"`
	CaseAllowanceLastUpdated time.Time `json:"case_allowance_last_updated"`

	UnlimitedAccess      bool       `json:"unlimited_access"`
	HarvardAccess        bool       `json:"harvard_access"`
	UnlimitedAccessUntil *time.Time `json:"unlimited_access_until,omitempty"`

	IsStaff       bool `json:"is_staff"`
	IsActive      bool `json:"is_active"`
	EmailVerified bool `json:"email_verified"`

	ActivationNonce string     `json:"-"`
	NonceExpires    *time.Time `json:"-"`

	DateJoined        time.Time  `json:"date_joined"`
	AgreedToTOS       bool       `json:"agreed_to_tos"`
	TrackHistory      bool       `json:"track_history"`
	MailingList       bool       `json:"mailing_list"`
	DeactivatedByUser bool       `json:"-"`
	DeactivatedDate   *time.Time `json:"-"`
}

// ShortName is the display name derived from the email address.
func (u *User) ShortName() string {
	for i, c := range u.Email {
		if c == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

// AuthToken is a long-lived API key. One per user.
type AuthToken struct {
	Key       string    `json:"key"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailBlockRule blocks signups whose address matches an exact domain or a
// regex over the entire address.
type EmailBlockRule struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	Regex     string    `json:"regex"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// MailingListEntry is a newsletter subscription independent of an account.
type MailingListEntry struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	DoNotEmail bool      `json:"do_not_email"`
	CreatedAt  time.Time `json:"created_at"`
}

// SiteLimits is a singleton row (ID 1) tracking sitewide daily counters.
type SiteLimits struct {
	ID                 int `json:"id"`
	DailySignupLimit   int `json:"daily_signup_limit"`
	DailySignups       int `json:"daily_signups"`
	DailyDownloadLimit int `json:"daily_download_limit"`
	DailyDownloads     int `json:"daily_downloads"`
}

// UserHistoryEntry records a case viewed by a user who opted into tracking.
type UserHistoryEntry struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"-"`
	CaseID   int64     `json:"case_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

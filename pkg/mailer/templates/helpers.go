package templates

import (
	"time"

	"github.com/oksasatya/nutriquest/config"
)

type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.TimeAt = t.UTC()
		d.Time = t.UTC().Format("02 January 2006, 15:04 MST")
	}
}

func WithBalance(coins, level int, xp float64) Option {
	return func(d *EmailData) {
		d.Coins = coins
		d.Level = level
		d.XPProgress = xp
	}
}

func WithChanges(fields []string) Option {
	return func(d *EmailData) { d.Changes = fields }
}

func WithChallenge(id, title string, coins, xp int) Option {
	return func(d *EmailData) {
		d.ChallengeID = id
		d.ChallengeTitle = title
		d.CoinsEarned = coins
		d.XPEarned = xp
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:      cfg.LogoURL,
		SupportURL:   cfg.SupportURL,
		DashboardURL: cfg.DashboardURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewProfileUpdatedData(cfg *config.Config, name, email string, fields []string, opts ...Option) map[string]any {
	opts = append([]Option{WithChanges(fields)}, opts...)
	return ToMap(NewBaseEmailData(cfg, ProfileUpdated, name, email, opts...))
}

func NewChallengeCompletedData(cfg *config.Config, name, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(cfg, ChallengeCompleted, name, email, opts...))
}

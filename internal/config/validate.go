package config

import (
	"strings"

	"github.com/rs/zerolog"
)

const minTokenSecretLength = 32

// Report separates fatal configuration problems from advisory ones.
type Report struct {
	Missing  []string
	Warnings []string
}

// Fatal reports whether the service must refuse to start.
func (r Report) Fatal() bool {
	return len(r.Missing) > 0
}

// Validate inspects the resolved configuration without side effects.
func Validate(cfg Config) Report {
	var report Report

	if cfg.DatabaseURL == "" {
		report.Missing = append(report.Missing, "DATABASE_URL (or MONGODB_URI)")
	}
	if cfg.TokenSecret == "" {
		report.Missing = append(report.Missing, "TOKEN_SECRET")
	}

	optional := []struct {
		name  string
		value string
	}{
		{"CLIENT_URL", cfg.ClientURL},
		{"RESEND_API_KEY", cfg.ResendAPIKey},
		{"EMAIL_FROM", cfg.EmailFrom},
		{"STRIPE_SECRET_KEY", cfg.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET", cfg.StripeWebhookSecret},
		{"CLOUDINARY_CLOUD_NAME", cfg.CloudinaryCloudName},
		{"CLOUDINARY_API_KEY", cfg.CloudinaryAPIKey},
		{"CLOUDINARY_API_SECRET", cfg.CloudinaryAPISecret},
	}
	for _, item := range optional {
		if strings.TrimSpace(item.value) == "" {
			report.Warnings = append(report.Warnings, item.name+" is not set")
		}
	}

	if cfg.TokenSecret != "" && len(cfg.TokenSecret) < minTokenSecretLength {
		report.Warnings = append(report.Warnings, "TOKEN_SECRET is shorter than 32 characters")
	}

	return report
}

// MustValidate logs advisory problems and calls exit(1) when required values are missing.
func MustValidate(cfg Config, logger zerolog.Logger, exit func(int)) Report {
	report := Validate(cfg)

	for _, warning := range report.Warnings {
		logger.Warn().Str("component", "config").Msg(warning)
	}

	if report.Fatal() {
		logger.Error().
			Str("component", "config").
			Strs("missing", report.Missing).
			Msg("required environment variables are missing")
		exit(1)
	}

	return report
}

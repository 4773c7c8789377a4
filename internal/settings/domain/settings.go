// Package domain holds the site-wide settings managed by admins.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Settings is the singleton row of public site settings.
type Settings struct {
	HeroImageURL  *string
	DonationQRURL *string
	DonationURL   *string
	UpdatedBy     *uuid.UUID
	UpdatedAt     time.Time
}

// Patch carries the fields an update changes. Nil fields keep their value.
type Patch struct {
	HeroImageURL  *string
	DonationQRURL *string
	DonationURL   *string
	UpdatedBy     uuid.UUID
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.HeroImageURL == nil && p.DonationQRURL == nil && p.DonationURL == nil
}

package transport

import (
	"time"

	"katze_backend/internal/settings/domain"
)

// UpdateSettingsRequest carries the text part of an admin settings update.
// Images travel as the heroImage and qrImage file parts.
type UpdateSettingsRequest struct {
	DonationURL string `form:"donationUrl" json:"donationUrl" validate:"omitempty,url,max=500"`
}

type SettingsResponse struct {
	HeroImageURL  *string `json:"heroImageUrl"`
	DonationQRURL *string `json:"donationQrUrl"`
	DonationURL   *string `json:"donationUrl"`
	UpdatedAt     string  `json:"updatedAt"`
}

func ToSettingsResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		HeroImageURL:  s.HeroImageURL,
		DonationQRURL: s.DonationQRURL,
		DonationURL:   s.DonationURL,
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weathernet"
	"weathernet/internal/repository"
)

const walletAddressLen = 42 // "0x" + 40 hex chars

// ApplicationService validates and persists node operator applications.
type ApplicationService struct {
	applications repository.ApplicationRepo
}

func NewApplicationService(applications repository.ApplicationRepo) *ApplicationService {
	return &ApplicationService{applications: applications}
}

// Submit validates the application and stores it keyed by wallet address.
// Returns the generated application id.
func (s *ApplicationService) Submit(ctx context.Context, app weathernet.NodeApplication) (string, error) {
	required := []struct {
		name  string
		value string
	}{
		{"firstName", app.FirstName},
		{"lastName", app.LastName},
		{"email", app.Email},
		{"organizationName", app.OrganizationName},
		{"city", app.City},
		{"state", app.State},
		{"country", app.Country},
		{"technicalExperience", app.TechnicalExperience},
		{"avaxWalletAddress", app.AvaxWalletAddress},
		{"motivation", app.Motivation},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return "", fmt.Errorf("%w: missing required field: %s", weathernet.ErrInvalidPayload, f.name)
		}
	}

	if !app.TermsAccepted || !app.DataPrivacyAccepted {
		return "", fmt.Errorf("%w: terms and data privacy must be accepted", weathernet.ErrInvalidPayload)
	}

	if !strings.HasPrefix(app.AvaxWalletAddress, "0x") || len(app.AvaxWalletAddress) != walletAddressLen {
		return "", fmt.Errorf("%w: invalid AVAX wallet address format", weathernet.ErrInvalidPayload)
	}

	if err := s.applications.Save(ctx, app); err != nil {
		return "", err
	}

	return newApplicationID(time.Now()), nil
}

// newApplicationID derives a short human-readable id from the submission
// time, e.g. "WN-483921".
func newApplicationID(now time.Time) string {
	return fmt.Sprintf("WN-%06d", now.UnixMilli()%1_000_000)
}

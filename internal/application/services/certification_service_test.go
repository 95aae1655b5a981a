package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
)

func TestDeriveCertStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   string
		expiry   time.Time
		expected string
	}{
		{
			name:     "active well before expiry",
			status:   models.CertStatusActive,
			expiry:   now.AddDate(1, 0, 0),
			expected: models.CertStatusActive,
		},
		{
			name:     "expiring inside the warning window",
			status:   models.CertStatusActive,
			expiry:   now.AddDate(0, 0, 45),
			expected: models.CertStatusExpiringSoon,
		},
		{
			name:     "exactly at the window boundary stays active",
			status:   models.CertStatusActive,
			expiry:   now.AddDate(0, 0, 90),
			expected: models.CertStatusActive,
		},
		{
			name:     "past expiry",
			status:   models.CertStatusExpiringSoon,
			expiry:   now.AddDate(0, 0, -1),
			expected: models.CertStatusExpired,
		},
		{
			name:     "suspended is never rederived",
			status:   models.CertStatusSuspended,
			expiry:   now.AddDate(0, 0, -30),
			expected: models.CertStatusSuspended,
		},
		{
			name:     "revoked is never rederived",
			status:   models.CertStatusRevoked,
			expiry:   now.AddDate(1, 0, 0),
			expected: models.CertStatusRevoked,
		},
		{
			name:     "withdrawn is never rederived",
			status:   models.CertStatusWithdrawn,
			expiry:   now.AddDate(0, 0, 10),
			expected: models.CertStatusWithdrawn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cert := &models.Certification{
				Status:     tt.status,
				ExpiryDate: tt.expiry,
			}
			assert.Equal(t, tt.expected, DeriveCertStatus(cert, now))
		})
	}
}

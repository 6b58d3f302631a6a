package testutil

import (
	"time"

	"kafkaportal/internal/platform/config"
)

// PortalConfig is an all in-memory configuration using the mock directory
// with admin:admin.
func PortalConfig() config.Server {
	return config.Server{
		JWTSigningKey:       "test-signing-key",
		JWTIssuer:           "kafka-admin-portal",
		TokenTTL:            time.Hour,
		ProvisionOnApproval: true,
		Directory: config.DirectoryConfig{
			Mode:            config.DirectoryModeMock,
			MockAdmins:      map[string]string{"admin": "admin"},
			MockEmailDomain: "company.com",
		},
		LoginRate: config.LoginRateConfig{Limit: 5, Window: time.Minute},
	}
}

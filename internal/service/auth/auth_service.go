// Package auth issues the admin token that guards the seeding
// endpoints. There are no user accounts; the only principal is the
// operator holding the configured secret.
package auth

import (
	"context"

	"github.com/spf13/viper"

	"github.com/ougirez/bizmap/internal/pkg/constants"
	"github.com/ougirez/bizmap/internal/pkg/logger"
	"github.com/ougirez/bizmap/internal/pkg/utils"
)

type Service struct{}

func NewAuthService() *Service {
	return &Service{}
}

// AdminLogin exchanges the configured secret for a signed token the
// admin middleware accepts as a cookie.
func (svc *Service) AdminLogin(ctx context.Context, secret string) (string, error) {
	if secret == "" || secret != viper.GetString(constants.ViperSecretKey) {
		return "", constants.ErrUnauthorized
	}

	token, err := utils.GenerateAuthToken(&utils.AuthTokenWrapper{Secret: secret})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "admin token issued")
	return token, nil
}

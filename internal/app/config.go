package app

import (
	"strings"
	"time"

	"github.com/edpsychconnect/backend/internal/logger"
	"github.com/edpsychconnect/backend/internal/services"
	"github.com/edpsychconnect/backend/internal/utils"
)

type Config struct {
	Port            string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AllowOrigins    []string
	Stripe          services.StripeConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTLSeconds := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	origins := strings.Split(utils.GetEnv("ALLOW_ORIGINS", "http://localhost:3000", log), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Port:            utils.GetEnv("PORT", "8080", log),
		JWTSecretKey:    jwtSecretKey,
		AccessTokenTTL:  time.Duration(accessTokenTTLSeconds) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTokenTTLSeconds) * time.Second,
		AllowOrigins:    origins,
		Stripe: services.StripeConfig{
			SecretKey:         utils.GetEnv("STRIPE_SECRET_KEY", "", log),
			WebhookSecret:     utils.GetEnv("STRIPE_WEBHOOK_SECRET", "", log),
			AppURL:            utils.GetEnv("APP_URL", "http://localhost:3000", log),
			PriceIDPro:        utils.GetEnv("STRIPE_PRICE_ID_PRO", "", log),
			PriceIDEnterprise: utils.GetEnv("STRIPE_PRICE_ID_ENTERPRISE", "", log),
		},
	}
}

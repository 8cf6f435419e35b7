package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"brandcast/pkg/config"
	"brandcast/pkg/jwt"
)

// Prints an operator token for the trigger endpoints, signed with ADMIN_JWT_SECRET.
func main() {
	var subject string
	var ttl time.Duration
	flag.StringVar(&subject, "sub", "operator", "Token subject")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	token, err := issueToken(cfg.AdminJWTSecret, subject, ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func issueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("ADMIN_JWT_SECRET is not set")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}
	token, err := jwt.NewService(secret).WithTTL(ttl).GenerateToken(subject, jwt.RoleOperator)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

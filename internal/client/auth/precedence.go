package auth

import (
	"errors"
	"fmt"
	"os"
)

const (
	// TokenEnvVar is the environment variable for the authorization token
	TokenEnvVar = "MINDFLOW_TOKEN"
)

// ResolveToken resolves the authorization token using precedence:
// 1. flagToken (--token flag)
// 2. Environment variable (MINDFLOW_TOKEN)
// 3. Stored token (skipped when store is nil)
// Returns empty string if no token found
func ResolveToken(flagToken string, store *TokenStore) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}

	if envToken := os.Getenv(TokenEnvVar); envToken != "" {
		return envToken, nil
	}

	if store == nil {
		return "", nil
	}

	storedToken, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load stored token: %w", err)
	}

	return storedToken, nil
}

// MaskToken hides all but the last four characters of a token
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

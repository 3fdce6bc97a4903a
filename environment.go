package logloader

import (
	"os"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/joho/godotenv"
)

// NormalizeEnvironment maps a raw value onto one of the recognised
// environments. Anything unrecognised falls back to development.
func NormalizeEnvironment(raw string) string {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case EnvProduction, EnvTesting:
		return v
	default:
		return EnvDevelopment
	}
}

// ResolveEnvironment reads EnvVar from the process environment.
func ResolveEnvironment() string {
	return NormalizeEnvironment(os.Getenv(EnvVar))
}

// resolveEnvironmentFile resolves the environment with a .env file as the
// fallback source. A value set in the process environment wins, matching
// godotenv.Load, but the process environment itself is left untouched.
func resolveEnvironmentFile(path string) (string, error) {
	const op errors.Op = "logloader.resolveEnvironmentFile"
	if v, ok := os.LookupEnv(EnvVar); ok {
		return NormalizeEnvironment(v), nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return EnvDevelopment, errors.New(op).Err(err).Msg(errMsgEnvFileFailed)
	}
	return NormalizeEnvironment(values[EnvVar]), nil
}

package source

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/go-timetrack/internal/config"
	"github.com/zalando/go-keyring"
)

// LookupPassword returns the password stored for user in the OS keyring.
// A missing entry yields an empty password so public feeds keep working.
func LookupPassword(user string) (string, error) {
	if user == "" {
		return "", nil
	}

	pass, err := keyring.Get(config.KeyringService, user)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(config.MsgPassFail,
			config.LogKeyComponent, config.CompSource,
			config.LogKeyUser, user,
		)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrPassword, err)
	}
	return pass, nil
}

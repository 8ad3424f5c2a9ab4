package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/repositories"
)

// resolveConnectionString returns the caller's connection string, or the one
// from the stored config record when the caller supplied none.
func resolveConnectionString(ctx context.Context, configRepo repositories.ConfigRepository, connString string) (string, error) {
	if strings.TrimSpace(connString) != "" {
		return connString, nil
	}
	if configRepo != nil {
		stored, err := configRepo.Get(ctx)
		if err != nil {
			return "", fmt.Errorf("load stored config: %w", err)
		}
		if strings.TrimSpace(stored.ConnectionString) != "" {
			return stored.ConnectionString, nil
		}
	}
	return "", apperrors.ConfigMissing("no connection string was supplied and none is stored")
}

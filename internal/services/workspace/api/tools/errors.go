package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	apperrors "github.com/louisbranch/gmworkspace/internal/platform/errors"
	"github.com/louisbranch/gmworkspace/internal/services/workspace/domain/workspace"
)

// StateURI is the resource that mirrors the live workspace.
const StateURI = "workspace://state"

// ResourceUpdateNotifier tells subscribed clients that a resource changed.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

func notifyState(ctx context.Context, notify ResourceUpdateNotifier) {
	if notify != nil {
		notify(ctx, StateURI)
	}
}

// toolError renders coded errors in the session locale so assistants can
// relay them to the user.
func toolError(op string, err error, locale string) error {
	code := apperrors.GetCode(err)
	if code == apperrors.CodeUnknown {
		return fmt.Errorf("%s failed: %w", op, err)
	}
	if code == apperrors.CodeLayoutStoreUnavailable {
		log.Printf("%s: %v", op, err)
	}
	return fmt.Errorf("%s failed: %s [%s]", op, apperrors.LocalizedMessage(err, locale), code)
}

func parseSide(value string) (workspace.Side, error) {
	side, err := workspace.ParseSide(value)
	if err != nil {
		return "", apperrors.WrapWithMetadata(apperrors.CodeWorkspaceInvalidSide, "parse side", map[string]string{"Side": value}, err)
	}
	return side, nil
}

// parseOptionalSide returns an empty side for blank input.
func parseOptionalSide(value string) (workspace.Side, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return parseSide(value)
}

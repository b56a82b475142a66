package shared

import (
	"fmt"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

var (
	// ErrNotFound indicates resource not found or owned by someone else.
	ErrNotFound = fmt.Errorf("not found: %w", httpx.ErrNotFound)
	// ErrUnauthenticated indicates a missing or expired session.
	ErrUnauthenticated = fmt.Errorf("authentication required: %w", httpx.ErrUnauthorized)
)

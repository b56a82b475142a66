package quotes

import (
	"fmt"

	"github.com/devisflow/devisflow/internal/platform/httpx"
)

var (
	// ErrNotFound covers missing quotes, quotes of another owner and unknown share tokens.
	ErrNotFound = fmt.Errorf("quote not found: %w", httpx.ErrNotFound)
	// ErrExpired is returned when signing through an expired share link.
	ErrExpired = fmt.Errorf("share link has expired: %w", httpx.ErrGone)
	// ErrAlreadySigned is returned on a second signature attempt.
	ErrAlreadySigned = fmt.Errorf("quote has already been signed: %w", httpx.ErrConflict)
	// ErrLocked is returned on any mutation of a paid quote.
	ErrLocked = fmt.Errorf("paid quote cannot be modified: %w", httpx.ErrForbidden)
	// ErrRendering wraps PDF generation failures.
	ErrRendering = fmt.Errorf("pdf rendering failed: %w", httpx.ErrInternal)
)

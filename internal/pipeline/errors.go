package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArchiveRead marks an archive that could not be opened or iterated
	// (corrupt container, truncated stream). The archive is abandoned;
	// segments flushed before the failure remain valid.
	ErrArchiveRead = errors.New("archive read error")
	// ErrParse marks a malformed XML document. Per-file and recoverable:
	// the file is skipped and counted, processing continues.
	ErrParse = errors.New("parse error")
	// ErrOutputWrite marks a failure to persist a segment or dataset.
	// Fatal for the owning worker or stage.
	ErrOutputWrite = errors.New("output write error")
	// ErrMissingField marks a required column absent from a dataset file.
	ErrMissingField = errors.New("missing required field")
	// ErrConfiguration marks unusable configuration, surfaced before any
	// processing begins.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification via errors.Is. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrOutputWrite
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether an error is isolated to one file or archive and
// must not terminate sibling work.
func Recoverable(err error) bool {
	return errors.Is(err, ErrParse) || errors.Is(err, ErrArchiveRead)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

package engine

import "github.com/rotisserie/eris"

// Classification failures are recoverable per sheet (the orchestrator tries
// the next sheet) and only surface when every sheet fails. Callers should
// map them to a user-correctable-input response class; anything else coming
// out of the engine is an internal error.
var (
	// ErrEmptyWorkbook means the upload had no worksheet at all.
	ErrEmptyWorkbook = eris.New("upload contains no worksheet data")

	// ErrNoIdentifierOrNameColumn means no column could be assigned the
	// identifier role and none could be assigned the product-name role.
	ErrNoIdentifierOrNameColumn = eris.New("no product identifier or product name column found")

	// ErrNoCostColumn means no column could be assigned the cost role.
	ErrNoCostColumn = eris.New("no cost column found")
)

// IsClassificationErr reports whether err is one of the classification
// failures a corrected upload would fix.
func IsClassificationErr(err error) bool {
	return eris.Is(err, ErrNoIdentifierOrNameColumn) || eris.Is(err, ErrNoCostColumn)
}

package chunk

import "fmt"

// MarkupError reports malformed or unrecognized markup found while
// parsing. Pos is a character offset into the input.
type MarkupError struct {
	Pos int
	Msg string
}

func (e *MarkupError) Error() string {
	return fmt.Sprintf("markup: %s at offset %d", e.Msg, e.Pos)
}

// SegmentationError reports a limit too small to place an atomic unit:
// a whole paragraph in plain mode, or a single character plus its
// wrapping overhead in HTML mode. Retrying cannot help; the caller has
// to raise the limit or change the input.
type SegmentationError struct {
	Limit int
	Unit  string
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("cannot fit %s within %d characters", e.Unit, e.Limit)
}

// UnsupportedModeError reports a parse mode Split does not recognize.
type UnsupportedModeError struct {
	Mode ParseMode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported parse mode %q", string(e.Mode))
}

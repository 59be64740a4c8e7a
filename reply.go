package microgram

// ReplyPolicy decides what each chunk of a split message replies to.
// main is the reply target requested for the whole message and prev is
// the id of the previously sent chunk; both may be zero, and a zero
// return means no reply link.
type ReplyPolicy func(main, prev int64) int64

// ReplyChain links the first chunk to the requested target and every
// following chunk to the chunk before it.
func ReplyChain(main, prev int64) int64 {
	if prev != 0 {
		return prev
	}
	return main
}

// ReplyNone never sets a reply target.
func ReplyNone(main, prev int64) int64 { return 0 }

// ReplyToMain links every chunk to the requested target.
func ReplyToMain(main, prev int64) int64 { return main }

// ReplyFirstOnly links only the first chunk to the requested target.
func ReplyFirstOnly(main, prev int64) int64 {
	if prev != 0 {
		return 0
	}
	return main
}

package selector

const (
	byteEscape         = 0x1B
	byteControlC       = 0x03
	byteCarriageReturn = '\r'
	byteLineFeed       = '\n'
	byteSpace          = ' '
	controlSequenceTag = '['
	cursorUpFinal      = 'A'
	cursorDownFinal    = 'B'
)

// DecodeKey maps one raw input chunk to a state machine event. A bare escape
// cancels; unrecognized sequences report false so the session can ignore
// them.
func DecodeKey(input []byte) (EventKind, bool) {
	if len(input) == 0 {
		return "", false
	}
	if input[0] == byteEscape {
		if len(input) == 1 {
			return EventCancel, true
		}
		if len(input) >= 3 && input[1] == controlSequenceTag {
			switch input[2] {
			case cursorUpFinal:
				return EventCursorUp, true
			case cursorDownFinal:
				return EventCursorDown, true
			}
		}
		return "", false
	}
	switch input[0] {
	case byteControlC, 'q':
		return EventCancel, true
	case byteCarriageReturn, byteLineFeed:
		return EventConfirm, true
	case byteSpace:
		return EventToggleCurrent, true
	case 'k':
		return EventCursorUp, true
	case 'j':
		return EventCursorDown, true
	case 'a':
		return EventAcceptAll, true
	case 'n':
		return EventAcceptNone, true
	}
	return "", false
}

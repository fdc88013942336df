package proto

// AppExitPayload encodes a MsgAppExit payload: the UTF-8 reason, clipped to max bytes.
func AppExitPayload(reason string, max int) []byte {
	if len(reason) > max {
		reason = reason[:max]
	}
	return []byte(reason)
}

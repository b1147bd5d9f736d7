package redisx

import "fmt"

const (
	// Cart lines per browser session: cart:{session_id} -> JSON list
	keyCart = "cart:%s"

	// Pending stock reservations per session: revert:{session_id} -> JSON list
	keyRevert = "revert:%s"

	// Last reservation activity per session: revert:touch:{session_id} -> unix seconds
	keyRevertTouch = "revert:touch:%s"
)

func CartKey(sessionID string) string        { return fmt.Sprintf(keyCart, sessionID) }
func RevertKey(sessionID string) string      { return fmt.Sprintf(keyRevert, sessionID) }
func RevertTouchKey(sessionID string) string { return fmt.Sprintf(keyRevertTouch, sessionID) }

package domain

// JoinRequest is a pending waiting-room admission record, visible to the
// host only. Arrival order is preserved for display.
type JoinRequest struct {
	UserID   UserID `json:"userId"`
	UserName string `json:"userName"`
}

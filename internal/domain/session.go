package domain

type SessionID string

// Session is the room identity and policy fetched once from the metadata
// service when the client loads a room. It is never mutated locally.
type Session struct {
	ID                 SessionID         `json:"id"`
	HostID             UserID            `json:"hostId"`
	Title              string            `json:"title"`
	WaitingRoomEnabled bool              `json:"waitingRoomEnabled"`
	Participants       []User            `json:"participants,omitempty"`
	Settings           map[string]string `json:"settings,omitempty"`
}

const (
	hostDisplayName    = "Teacher (Host)"
	defaultDisplayName = "Participant"
)

// IsHost is the single host predicate; every call site goes through it
// instead of comparing identities ad hoc.
func (s *Session) IsHost(id UserID) bool {
	return s != nil && id != "" && id == s.HostID
}

// ResolveName picks a display name for id. Precedence: explicit name from
// the event payload, then the known-participant list, then the host label,
// then a generic placeholder.
func (s *Session) ResolveName(id UserID, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if s != nil {
		for _, p := range s.Participants {
			if p.ID == id && p.Name != "" {
				return p.Name
			}
		}
		if s.IsHost(id) {
			return hostDisplayName
		}
	}
	return defaultDisplayName
}

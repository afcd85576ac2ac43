package model

import "time"

// SanctionID uniquely identifies a sanction
type SanctionID string

// SanctionTypeManual is issued from the admin panel
const SanctionTypeManual = "manual"

// RoleSnapshot records a role removed by a sanction so it can be restored
type RoleSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sanction temporarily strips a member of their roles
type Sanction struct {
	ID        SanctionID
	PlayerID  PlayerID
	Type      string
	EndTime   time.Time
	Roles     []RoleSnapshot
	CreatedAt time.Time
}

// IsActive returns true if the sanction has not yet expired at now
func (s *Sanction) IsActive(now time.Time) bool {
	return s.EndTime.After(now)
}

// RoleIDs returns the ids of the snapshotted roles
func (s *Sanction) RoleIDs() []string {
	ids := make([]string, len(s.Roles))
	for i, r := range s.Roles {
		ids[i] = r.ID
	}
	return ids
}

package domain

import "time"

type ReviewAction string

const (
	ReviewKept     ReviewAction = "kept"
	ReviewDeleted  ReviewAction = "deleted"
	ReviewRestored ReviewAction = "restored"
)

// ReviewRecord is one confirmed review decision, kept per server and user.
type ReviewRecord struct {
	UID        string
	Server     string
	User       string
	AssetID    string
	Action     ReviewAction
	ReviewedAt time.Time
}

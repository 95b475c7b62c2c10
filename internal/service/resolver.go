package service

import "strings"

// ConflictStrategy decides whether an incoming mapped record may
// overwrite an existing local row. The strategy is process-wide,
// configured once at service construction.
type ConflictStrategy string

const (
	// RemoteWins always overwrites the local row.
	RemoteWins ConflictStrategy = "remote_wins"
	// LocalWins fetches but never overwrites; existing rows stay untouched.
	LocalWins ConflictStrategy = "local_wins"
	// LatestWins currently behaves like RemoteWins: local rows carry no
	// edit timestamp to compare against, so the remote side is treated
	// as the authoritative latest version.
	LatestWins ConflictStrategy = "latest_wins"
	// Manual never overwrites automatically; conflicts are logged for
	// human review instead.
	Manual ConflictStrategy = "manual"
)

// ParseStrategy normalizes a configured value, defaulting to LatestWins.
func ParseStrategy(raw string) ConflictStrategy {
	switch ConflictStrategy(strings.ToLower(strings.TrimSpace(raw))) {
	case RemoteWins:
		return RemoteWins
	case LocalWins:
		return LocalWins
	case Manual:
		return Manual
	default:
		return LatestWins
	}
}

// Overwrites reports whether an existing row should be updated with
// the incoming record under this strategy.
func (s ConflictStrategy) Overwrites() bool {
	switch s {
	case RemoteWins, LatestWins:
		return true
	default:
		return false
	}
}

package models

// DriveVerdict is the outcome of inspecting the device that holds a folder
type DriveVerdict string

const (
	// VerdictRemovable means the folder sits on a removable volume
	VerdictRemovable DriveVerdict = "removable"
	// VerdictUnverified means the volume was not found or is not removable
	VerdictUnverified DriveVerdict = "unverified"
	// VerdictOverridden means the volume was unverified but a user accepted it
	VerdictOverridden DriveVerdict = "overridden"
)

// Override applies an explicit user decision to an unverified verdict.
// Removable and already overridden verdicts are returned unchanged.
func (v DriveVerdict) Override(confirmed bool) DriveVerdict {
	if v == VerdictUnverified && confirmed {
		return VerdictOverridden
	}
	return v
}

// AllowsPurge reports whether deletion may proceed under this verdict
func (v DriveVerdict) AllowsPurge() bool {
	return v == VerdictRemovable || v == VerdictOverridden
}

// NeedsOverride reports whether a user must confirm the device before purging
func (v DriveVerdict) NeedsOverride() bool {
	return v == VerdictUnverified
}

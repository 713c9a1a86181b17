package supervisor

import "time"

// ProcessRecord tracks one profile's running browser process, mirroring
// the original browsion product's process::manager::ProcessInfo, extended
// with the CDP port the control plane needs to dial.
type ProcessRecord struct {
	ProfileID  string    `json:"profile_id"`
	PID        int       `json:"pid"`
	CDPPort    int       `json:"cdp_port"`
	LaunchedAt time.Time `json:"launched_at"`
	External   bool      `json:"external,omitempty"`
}

// LaunchedProfile is a lightweight record of a recent launch, capped at 10
// entries, grounded on manager.rs's recent_launches ring.
type LaunchedProfile struct {
	ProfileID  string    `json:"profile_id"`
	LaunchedAt time.Time `json:"launched_at"`
}

const recentLaunchesCap = 10

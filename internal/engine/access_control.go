package engine

import (
	"deauthguard/internal/config"
	"deauthguard/internal/normalize"
)

// AccessControlSet holds the transmitter lists consulted before events reach
// the detection core. Trusted transmitters (the operator's own APs issuing
// legitimate deauths) are suppressed; blacklisted transmitters raise an
// immediate alert on top of the normal windowing.
type AccessControlSet struct {
	Enabled   bool
	Trusted   map[string]struct{}
	Blacklist map[string]struct{}
}

func buildAccessControl(cfg *config.Config) *AccessControlSet {
	ac := &AccessControlSet{Enabled: cfg.AccessControl.Enabled}
	if !ac.Enabled {
		return ac
	}
	ac.Trusted = buildMACSet(cfg.AccessControl.TrustedTransmitters)
	ac.Blacklist = buildMACSet(cfg.AccessControl.Blacklist)
	return ac
}

func buildMACSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		mac := normalize.MAC(v)
		if mac == "" {
			continue
		}
		set[mac] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func (a *AccessControlSet) IsTrusted(mac string) bool {
	if a == nil || !a.Enabled || a.Trusted == nil {
		return false
	}
	_, ok := a.Trusted[mac]
	return ok
}

func (a *AccessControlSet) IsBlacklisted(mac string) bool {
	if a == nil || !a.Enabled || a.Blacklist == nil {
		return false
	}
	_, ok := a.Blacklist[mac]
	return ok
}

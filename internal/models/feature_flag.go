package models

import "strings"

// Platform identifies the client surface requesting feature flags.
type Platform string

const (
	PlatformMobile Platform = "mobile"
	PlatformWeb    Platform = "web"
)

// FeatureFlag is an operator-controlled rollout switch.
type FeatureFlag struct {
	Base
	Key          string `gorm:"uniqueIndex;not null" json:"key"`
	Description  string `json:"description"`
	EnabledFree  bool   `json:"enabledFree"`
	EnabledPro   bool   `json:"enabledPro"`
	EnabledAdmin bool   `json:"enabledAdmin"`
	// Platforms is a comma separated list; empty means every platform.
	Platforms string `json:"platforms"`
}

// EnabledFor resolves the flag for a user plan on a platform.
func (f FeatureFlag) EnabledFor(plan UserPlan, platform Platform) bool {
	if f.Platforms != "" {
		found := false
		for _, p := range strings.Split(f.Platforms, ",") {
			if Platform(strings.TrimSpace(p)) == platform {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	switch plan {
	case UserPlanAdmin:
		return f.EnabledAdmin
	case UserPlanPro:
		return f.EnabledPro
	default:
		return f.EnabledFree
	}
}

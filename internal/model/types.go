package model

import (
	"fmt"
	"strings"
)

// ProtectionTier is the service level requested for, or recommended to, a client.
type ProtectionTier string

const (
	TierEssential       ProtectionTier = "essential"
	TierExecutive       ProtectionTier = "executive"
	TierCloseProtection ProtectionTier = "close_protection"
)

// TierRank maps protection tiers to a comparable integer. Higher = more demanding.
var TierRank = map[ProtectionTier]int{
	TierEssential:       0,
	TierExecutive:       1,
	TierCloseProtection: 2,
}

// HighestTier is the most demanding protection tier.
const HighestTier = TierCloseProtection

// ParseTier maps user input to a ProtectionTier. Accepts dashes, spaces and any case.
func ParseTier(s string) (ProtectionTier, error) {
	t := ProtectionTier(normalizeKey(s))
	if _, ok := TierRank[t]; !ok {
		return "", fmt.Errorf("unknown protection tier %q", s)
	}
	return t, nil
}

// LicenseCategory is an SIA licence category.
type LicenseCategory string

const (
	LicenseDoorSupervision  LicenseCategory = "door_supervision"
	LicenseCloseProtection  LicenseCategory = "close_protection"
	LicenseSecurityGuarding LicenseCategory = "security_guarding"
	LicenseCCTV             LicenseCategory = "cctv"
	LicenseCashTransit      LicenseCategory = "cash_transit"
)

// LicenseCategories lists every known category in display order.
var LicenseCategories = []LicenseCategory{
	LicenseDoorSupervision,
	LicenseCloseProtection,
	LicenseSecurityGuarding,
	LicenseCCTV,
	LicenseCashTransit,
}

// ParseLicenseCategory maps user input to a LicenseCategory.
func ParseLicenseCategory(s string) (LicenseCategory, error) {
	c := LicenseCategory(normalizeKey(s))
	for _, known := range LicenseCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown licence category %q", s)
}

// LicenseStatus is the register status of an SIA licence.
type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "active"
	LicenseExpired   LicenseStatus = "expired"
	LicenseSuspended LicenseStatus = "suspended"
	LicenseRevoked   LicenseStatus = "revoked"
	LicensePending   LicenseStatus = "pending"
)

// DBSLevel is the depth of a criminal-record (DBS) check.
type DBSLevel string

const (
	DBSBasic          DBSLevel = "basic"
	DBSStandard       DBSLevel = "standard"
	DBSEnhanced       DBSLevel = "enhanced"
	DBSEnhancedBarred DBSLevel = "enhanced_barred"
)

// DBSRank maps DBS levels to a comparable integer for "at least" checks.
var DBSRank = map[DBSLevel]int{
	DBSBasic:          0,
	DBSStandard:       1,
	DBSEnhanced:       2,
	DBSEnhancedBarred: 3,
}

// ExperienceTier is an officer's seniority band.
type ExperienceTier string

const (
	ExperienceEntry        ExperienceTier = "entry"
	ExperienceIntermediate ExperienceTier = "intermediate"
	ExperienceSenior       ExperienceTier = "senior"
	ExperienceExpert       ExperienceTier = "expert"
	ExperienceElite        ExperienceTier = "elite"
)

// ExperienceRank orders experience tiers from entry to elite.
var ExperienceRank = map[ExperienceTier]int{
	ExperienceEntry:        0,
	ExperienceIntermediate: 1,
	ExperienceSenior:       2,
	ExperienceExpert:       3,
	ExperienceElite:        4,
}

// Priority is the severity of a requirement or remediation action.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// PriorityRank sorts priorities by severity: critical first.
var PriorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// ProfileLevel is a venue's public-profile level.
type ProfileLevel string

const (
	ProfileLow    ProfileLevel = "low"
	ProfileMedium ProfileLevel = "medium"
	ProfileHigh   ProfileLevel = "high"
)

// normalizeKey lowercases and folds dashes/spaces to underscores.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

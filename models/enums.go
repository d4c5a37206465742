package models

import "errors"

type VenueCategory string

const (
	VenueCategoryBar       VenueCategory = "Bar"
	VenueCategoryNightclub VenueCategory = "Nightclub"
)

func VenueCategories() []VenueCategory {
	return []VenueCategory{VenueCategoryBar, VenueCategoryNightclub}
}

func ParseVenueCategory(s string) (VenueCategory, error) {
	switch s {
	case "Bar":
		return VenueCategoryBar, nil
	case "Nightclub":
		return VenueCategoryNightclub, nil
	}
	return "", errors.New("invalid venue category")
}

type DrinkCategory string

const (
	DrinkCategoryChampagne    DrinkCategory = "Champagne"
	DrinkCategoryWhisky       DrinkCategory = "Whisky"
	DrinkCategoryLager        DrinkCategory = "Lager"
	DrinkCategoryPremiumLager DrinkCategory = "PremiumLager"
	DrinkCategoryLiqueur      DrinkCategory = "Liqueur"
	DrinkCategoryStoutLarge   DrinkCategory = "StoutLarge"
	DrinkCategoryStoutSmall   DrinkCategory = "StoutSmall"
	DrinkCategorySoft         DrinkCategory = "Soft"
	DrinkCategoryOther        DrinkCategory = "Other"
)

func ParseDrinkCategory(s string) (DrinkCategory, error) {
	drinkCategories := map[string]DrinkCategory{
		"Champagne":    DrinkCategoryChampagne,
		"Whisky":       DrinkCategoryWhisky,
		"Lager":        DrinkCategoryLager,
		"PremiumLager": DrinkCategoryPremiumLager,
		"Liqueur":      DrinkCategoryLiqueur,
		"StoutLarge":   DrinkCategoryStoutLarge,
		"StoutSmall":   DrinkCategoryStoutSmall,
		"Soft":         DrinkCategorySoft,
		"Other":        DrinkCategoryOther,
	}
	c, ok := drinkCategories[s]
	if !ok {
		return "", errors.New("invalid drink category")
	}
	return c, nil
}

// UserRole is resolved once at account creation, never re-derived per request.
type UserRole string

const (
	UserRoleAdmin       UserRole = "Admin"
	UserRoleOwner       UserRole = "Owner"
	UserRoleStaff       UserRole = "Staff"
	UserRoleParticipant UserRole = "Participant"
	UserRoleUnassigned  UserRole = "Unassigned"
)

type StaffFunction string

const (
	StaffFunctionManager  StaffFunction = "Manager"
	StaffFunctionDirector StaffFunction = "Director"
	StaffFunctionHost     StaffFunction = "Host"
)

type MembershipStatus string

const (
	MembershipStatusPending  MembershipStatus = "Pending"
	MembershipStatusApproved MembershipStatus = "Approved"
	MembershipStatusRejected MembershipStatus = "Rejected"
)

type TrophyType string

const (
	// Daily top spender at a bar.
	TrophyTypeBarSultan TrophyType = "BarSultan"
	// Daily top spender at a nightclub.
	TrophyTypeClubEmperor TrophyType = "ClubEmperor"
	// Daily top-selling bar.
	TrophyTypeBarSalesKing TrophyType = "BarSalesKing"
	// Daily top-selling nightclub.
	TrophyTypeGoldenBouquet TrophyType = "GoldenBouquet"
)

type WagerDirection string

const (
	WagerDirectionGain WagerDirection = "Gain"
	WagerDirectionLoss WagerDirection = "Loss"
)

func ParseWagerDirection(s string) (WagerDirection, error) {
	switch s {
	case "Gain":
		return WagerDirectionGain, nil
	case "Loss":
		return WagerDirectionLoss, nil
	}
	return "", errors.New("invalid wager direction")
}

// WagerOutcome replaces the nullable won/lost boolean: the state machine is
// Unresolved -> Won | Lost, with no fourth state.
type WagerOutcome string

const (
	WagerOutcomeUnresolved WagerOutcome = "Unresolved"
	WagerOutcomeWon        WagerOutcome = "Won"
	WagerOutcomeLost       WagerOutcome = "Lost"
)

package models

import "github.com/bricesome/SoireClash/config"

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Venue{},
		&MenuItem{},
		&Participant{},
		&StaffMember{},
		&ConsumptionRecord{},
		&ParticipantRanking{},
		&VenueRanking{},
		&Trophy{},
		&Wager{},
		&MembershipRequest{},
		&MediaFile{},
	)
	if err != nil {
		panic(err)
	}
}

package models

import "testing"

func TestTrophyLabelNamesEveryType(t *testing.T) {
	seen := map[string]TrophyType{}
	for _, trophyType := range []TrophyType{
		TrophyTypeBarSultan,
		TrophyTypeClubEmperor,
		TrophyTypeBarSalesKing,
		TrophyTypeGoldenBouquet,
	} {
		label := trophyLabel(trophyType)
		if label == "" || label == string(trophyType) {
			t.Errorf("trophyLabel(%s) = %q; want a display name", trophyType, label)
		}
		if other, dup := seen[label]; dup {
			t.Errorf("label %q shared by %s and %s", label, other, trophyType)
		}
		seen[label] = trophyType
	}
}

package model

import "testing"

func TestKitFromPassengerKey(t *testing.T) {
	for _, k := range AllKitTypes {
		got, err := KitFromPassengerKey(k.PassengerKey())
		if err != nil {
			t.Fatalf("lookup %q: %v", k.PassengerKey(), err)
		}
		if got != k {
			t.Fatalf("lookup %q = %v, want %v", k.PassengerKey(), got, k)
		}
	}
	if _, err := KitFromPassengerKey("cargo"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestKitConstants(t *testing.T) {
	cases := []struct {
		kit      KitType
		lead     int
		unitCost float64
	}{
		{KitFirst, 48, 200},
		{KitBusiness, 36, 150},
		{KitPremiumEconomy, 24, 100},
		{KitEconomy, 12, 50},
	}
	for _, c := range cases {
		if c.kit.LeadTimeHours() != c.lead {
			t.Errorf("%v lead time = %d, want %d", c.kit, c.kit.LeadTimeHours(), c.lead)
		}
		if c.kit.UnitCost() != c.unitCost {
			t.Errorf("%v unit cost = %v, want %v", c.kit, c.kit.UnitCost(), c.unitCost)
		}
	}
}

func TestKitQuantities(t *testing.T) {
	var q KitQuantities
	if !q.IsZero() {
		t.Fatalf("zero value must be zero")
	}
	q.Set(KitEconomy, 5)
	q.Add(KitEconomy, 2)
	q.Add(KitFirst, 1)
	if q.Get(KitEconomy) != 7 || q.Total() != 8 {
		t.Fatalf("unexpected quantities: %+v", q)
	}
}

package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{NewDate(1900, 1, 1), true},
		{NewDate(1899, 12, 31), false},
		{NewDate(2101, 1, 1), false},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 9)
	b, err := d.MarshalJSON()
	if err != nil || string(b) != `"2025-03-09"` {
		t.Fatalf("marshal: got %s (err=%v)", b, err)
	}
	var back Date
	if err := back.UnmarshalJSON(b); err != nil || !back.Equal(d.Time) {
		t.Fatalf("unmarshal: got %v (err=%v)", back, err)
	}
	var empty Date
	if err := empty.UnmarshalJSON([]byte("null")); err != nil || !empty.IsZero() {
		t.Fatalf("null should give zero date, got %v (err=%v)", empty, err)
	}
	if err := empty.UnmarshalJSON([]byte(`"2025-13-01"`)); err == nil {
		t.Fatalf("expected error for month 13")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-02-29"); err != nil || d.Day() != 29 {
		t.Fatalf("scan string: %v %v", d, err)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil: %v %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error scanning int")
	}
}

func TestPartnerMembers(t *testing.T) {
	p := Partner{User1ID: "a", User2ID: "b", Status: PartnerActive}
	if !p.Has("a") || !p.Has("b") || p.Has("c") || p.Has("") {
		t.Fatalf("Has mismatch")
	}
	if p.Other("a") != "b" || p.Other("b") != "a" {
		t.Fatalf("Other mismatch")
	}
}

func TestInvitationExpired(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	inv := Invitation{ExpiresAt: now.Add(time.Hour)}
	if inv.Expired(now) {
		t.Fatalf("should not be expired yet")
	}
	if !inv.Expired(now.Add(time.Hour)) {
		t.Fatalf("should be expired at the deadline")
	}
}

func TestInvestmentSigned(t *testing.T) {
	dep := Investment{Amount: Cents(500), TransactionType: Deposit}
	wd := Investment{Amount: Cents(200), TransactionType: Withdrawal}
	if dep.Signed().Cents != 500 || wd.Signed().Cents != -200 {
		t.Fatalf("signed amounts wrong: %v %v", dep.Signed(), wd.Signed())
	}
}

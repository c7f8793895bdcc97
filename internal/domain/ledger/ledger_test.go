package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var (
	due    = decimal.NewFromInt(50000)
	feb5   = time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)
	feb3   = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	feb10  = time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	amount = func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
)

func TestDeriveStatusTable(t *testing.T) {
	cases := []struct {
		name string
		paid decimal.Decimal
		asOf time.Time
		want Status
	}{
		{"unpaid before due", amount(0), feb3, StatusPending},
		{"unpaid on due date", amount(0), feb5, StatusPending},
		{"unpaid after due", amount(0), feb10, StatusLate},
		{"partial before due", amount(20000), feb3, StatusPartial},
		{"partial after due", amount(20000), feb10, StatusPartial},
		{"exact payment", amount(50000), feb10, StatusPaid},
		{"overpayment", amount(60000), feb3, StatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.paid, due, feb5, tc.asOf); got != tc.want {
				t.Fatalf("DeriveStatus = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDeriveStatusIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		if got := DeriveStatus(amount(20000), due, feb5, feb10); got != StatusPartial {
			t.Fatalf("expected partial, got %s", got)
		}
	}
}

func TestDeriveIsLatePaidOnDueDateIsOnTime(t *testing.T) {
	pd := feb5
	if DeriveIsLate(StatusPaid, feb5, &pd, feb10) {
		t.Fatal("payment dated exactly on due date must be on-time")
	}
}

func TestDeriveIsLatePaidAfterDueDate(t *testing.T) {
	pd := feb10
	if !DeriveIsLate(StatusPaid, feb5, &pd, feb10) {
		t.Fatal("payment after due date must be late")
	}
}

func TestDeriveIsLateWaivedNeverLate(t *testing.T) {
	if DeriveIsLate(StatusWaived, feb5, nil, feb10) {
		t.Fatal("waived obligations are never late")
	}
}

func TestOverpaid(t *testing.T) {
	p := RentPayment{AmountDue: due, AmountPaid: amount(60000)}
	if !p.Overpaid() {
		t.Fatal("expected overpaid")
	}
	p.AmountPaid = amount(50000)
	if p.Overpaid() {
		t.Fatal("exact payment is not overpaid")
	}
	// Late fee raises the overpayment threshold.
	p.LateFee = amount(5000)
	p.AmountPaid = amount(55000)
	if p.Overpaid() {
		t.Fatal("payment covering due + fee is not overpaid")
	}
}

func TestDeriveLateness(t *testing.T) {
	payments := []RentPayment{
		{Status: StatusPaid, DueDate: feb5},
		{Status: StatusPartial, DueDate: feb5},
	}
	if !DeriveLateness(payments, feb10) {
		t.Fatal("unsettled obligation past due must flag the tenant late")
	}
	if DeriveLateness(payments, feb3) {
		t.Fatal("nothing past due yet")
	}
	payments[1].Status = StatusWaived
	if DeriveLateness(payments, feb10) {
		t.Fatal("waived obligations do not count toward lateness")
	}
}

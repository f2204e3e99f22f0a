// ABOUTME: Tests for the account-scoped replica store
// ABOUTME: Covers scoping isolation, corrupted data, unauthenticated access
package store

import (
	"testing"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/fieldfolio/fieldfolio/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndList(t *testing.T) {
	s := setupTestStore(t)
	s.SetAccount("acct-a")

	clients := []models.Client{{ID: "c1", Name: "Acme Ltd"}}
	Put(s, models.KindClients, clients)

	got := List[models.Client](s, models.KindClients)
	if len(got) != 1 {
		t.Fatalf("expected 1 client, got %d", len(got))
	}
	if got[0].Name != "Acme Ltd" {
		t.Errorf("expected Acme Ltd, got %s", got[0].Name)
	}
}

func TestAccountIsolation(t *testing.T) {
	s := setupTestStore(t)

	s.SetAccount("acct-a")
	Put(s, models.KindClients, []models.Client{{ID: "c1", Name: "Acme Ltd"}})

	s.SetAccount("acct-b")
	if got := List[models.Client](s, models.KindClients); len(got) != 0 {
		t.Errorf("account b sees account a's data: %v", got)
	}

	s.SetAccount("acct-a")
	if got := List[models.Client](s, models.KindClients); len(got) != 1 {
		t.Errorf("account a lost its data, got %d clients", len(got))
	}
}

func TestNoAccountReadsEmptyWritesRefused(t *testing.T) {
	s := setupTestStore(t)

	Put(s, models.KindClients, []models.Client{{ID: "c1", Name: "Ghost"}})
	if got := List[models.Client](s, models.KindClients); len(got) != 0 {
		t.Errorf("unauthenticated read returned data: %v", got)
	}

	s.SetAccount("acct-a")
	if got := List[models.Client](s, models.KindClients); len(got) != 0 {
		t.Errorf("refused write leaked into account scope: %v", got)
	}

	if _, ok := GetSetting[models.Branding](s, models.SettingBranding); ok {
		t.Error("unauthenticated setting read returned data")
	}
}

func TestCorruptedDataReadsEmpty(t *testing.T) {
	s := setupTestStore(t)
	s.SetAccount("acct-a")

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.collectionKey(models.KindJobs), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("failed to plant corrupt data: %v", err)
	}

	if got := List[models.Job](s, models.KindJobs); len(got) != 0 {
		t.Errorf("corrupted collection should read empty, got %d", len(got))
	}
}

func TestInvalidate(t *testing.T) {
	s := setupTestStore(t)
	s.SetAccount("acct-a")

	Put(s, models.KindInvoices, []models.Invoice{{ID: "i1", Total: 600}})
	s.Invalidate(models.KindInvoices)

	if got := List[models.Invoice](s, models.KindInvoices); len(got) != 0 {
		t.Errorf("expected empty collection after invalidate, got %d", len(got))
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	s.SetAccount("acct-a")

	PutSetting(s, models.SettingBankDetails, models.BankDetails{
		AccountName: "FieldFolio Ltd", SortCode: "12-34-56", AccountNumber: "12345678",
	})

	bank, ok := GetSetting[models.BankDetails](s, models.SettingBankDetails)
	if !ok {
		t.Fatal("expected bank details to exist")
	}
	if bank.SortCode != "12-34-56" {
		t.Errorf("expected sort code 12-34-56, got %s", bank.SortCode)
	}

	if _, ok := GetSetting[models.Branding](s, models.SettingBranding); ok {
		t.Error("expected branding to be absent")
	}
}

func TestResetWipesAccount(t *testing.T) {
	s := setupTestStore(t)
	s.SetAccount("acct-a")

	Put(s, models.KindClients, []models.Client{{ID: "c1", Name: "Acme Ltd"}})
	PutSetting(s, models.SettingBranding, models.Branding{PrimaryColor: "#336699"})
	PutSetting(s, "activity-log", []string{"created client c1"})

	s.Reset()

	if got := List[models.Client](s, models.KindClients); len(got) != 0 {
		t.Errorf("expected clients wiped, got %d", len(got))
	}
	if _, ok := GetSetting[models.Branding](s, models.SettingBranding); ok {
		t.Error("expected branding wiped")
	}
	if _, ok := GetSetting[[]string](s, "activity-log"); ok {
		t.Error("expected activity trail wiped")
	}
}

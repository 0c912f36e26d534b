package model

import (
	"errors"
	"testing"
	"time"
)

func completeAccount() Account {
	return Account{
		Secret:    "s3cret",
		Username:  "jdoe",
		FullName:  "Jane Doe",
		Email:     "jdoe@example.org",
		GUID:      "abc-123",
		Role:      "student",
		TokenDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAccountValidate(t *testing.T) {
	if err := completeAccount().Validate(); err != nil {
		t.Fatalf("complete account rejected: %v", err)
	}

	missing := completeAccount()
	missing.GUID = ""
	if err := missing.Validate(); !errors.Is(err, ErrIncompleteAccount) {
		t.Fatalf("missing guid: got %v, want ErrIncompleteAccount", err)
	}

	blank := completeAccount()
	blank.Email = "   "
	if err := blank.Validate(); !errors.Is(err, ErrIncompleteAccount) {
		t.Fatalf("blank email: got %v, want ErrIncompleteAccount", err)
	}

	noDate := completeAccount()
	noDate.TokenDate = time.Time{}
	if err := noDate.Validate(); !errors.Is(err, ErrIncompleteAccount) {
		t.Fatalf("zero token date: got %v, want ErrIncompleteAccount", err)
	}
}

func TestSessionAuthenticated(t *testing.T) {
	acct := completeAccount()
	s := Session{InstanceURL: "https://school.example.org", DeviceID: "dev-1", Account: &acct}
	if !s.Authenticated() {
		t.Fatal("full session should be authenticated")
	}

	if (Session{InstanceURL: "https://school.example.org", DeviceID: "dev-1"}).Authenticated() {
		t.Fatal("session without account should not be authenticated")
	}
}

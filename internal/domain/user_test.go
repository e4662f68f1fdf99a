package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPasswordHashing(t *testing.T) {
	u := &User{Username: "tester", PhoneNumber: "+989121234567"}

	require.NoError(t, u.HashPassword("a long password"))
	assert.NotEqual(t, "a long password", u.Password)

	assert.NoError(t, u.ValidatePassword("a long password"))
	assert.Error(t, u.ValidatePassword("wrong password"))

	assert.Error(t, u.HashPassword("short"))
}

func TestUserIsValid(t *testing.T) {
	valid := &User{Username: "tester", PhoneNumber: "+989121234567", Password: "hash"}
	assert.NoError(t, valid.IsValid())

	assert.Error(t, (&User{PhoneNumber: "+989121234567", Password: "hash"}).IsValid())
	assert.Error(t, (&User{Username: "tester", Password: "hash"}).IsValid())
}

func TestListingIsValid(t *testing.T) {
	valid := &Listing{SellerID: 1, Title: "Desk lamp", PriceCents: 500}
	assert.NoError(t, valid.IsValid())

	assert.Error(t, (&Listing{Title: "Desk lamp"}).IsValid())
	assert.Error(t, (&Listing{SellerID: 1, Title: "ab"}).IsValid())
	assert.Error(t, (&Listing{SellerID: 1, Title: "Desk lamp", PriceCents: -1}).IsValid())
}

package models

import "time"

// Account is a signed-up user identified by email. Favorites are owned by
// the account id.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountStorage is the on-disk form of an Account, including the hash.
type AccountStorage struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (a Account) ToStorage() AccountStorage {
	return AccountStorage(a)
}

func (as AccountStorage) ToAccount() Account {
	return Account(as)
}

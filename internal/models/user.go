package models

import (
	"time"

	"github.com/GregMSThompson/wallet-api/internal/errs"
)

// User mirrors the auth profile. Name duplicates DisplayName for documents
// written by older clients.
type User struct {
	UID         string    `firestore:"uid" json:"uid"`
	Email       string    `firestore:"email" json:"email" validate:"omitempty,email"`
	DisplayName string    `firestore:"displayName" json:"displayName" validate:"omitempty,min=2,max=100"`
	Name        string    `firestore:"name" json:"-"`
	PhotoURL    string    `firestore:"photoUrl,omitempty" json:"photoUrl,omitempty"`
	PhoneNumber string    `firestore:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

var userMessages = map[string]string{
	"email":       "invalid email",
	"displayName": "name must be between 2 and 100 characters",
}

func (u *User) Validate() error {
	return check(u, userMessages)
}

type UserPatch struct {
	DisplayName *string `json:"displayName,omitempty" validate:"omitnil,min=2,max=100"`
	PhotoURL    *string `json:"photoUrl,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

var userPatchMessages = map[string]string{
	"displayName": "name must be between 2 and 100 characters",
	"photoUrl":    "invalid photo url",
}

// Validate accepts an empty photoUrl or phoneNumber; that clears the field.
func (p *UserPatch) Validate() error {
	if err := check(p, userPatchMessages); err != nil {
		return err
	}
	if p.PhotoURL != nil && *p.PhotoURL != "" {
		if err := validate.Var(*p.PhotoURL, "url"); err != nil {
			return errs.NewFieldError("photoUrl", userPatchMessages["photoUrl"])
		}
	}
	return nil
}

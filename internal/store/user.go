package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/wallet-api/internal/errs"
	"github.com/GregMSThompson/wallet-api/internal/models"
)

type userStore struct {
	Client     *firestore.Client
	Collection *firestore.CollectionRef
	clockNow   func() time.Time
}

func NewUserStore(client *firestore.Client) *userStore {
	return &userStore{
		Client:     client,
		Collection: client.Collection(usersCollection),
		clockNow:   time.Now,
	}
}

func (us *userStore) CreateUser(ctx context.Context, user *models.User) error {
	now := us.clockNow()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Name = user.DisplayName

	if _, err := us.Collection.Doc(user.UID).Create(ctx, user); err != nil {
		if isAlreadyExists(err) {
			return errs.NewAlreadyExistsError("user already exists")
		}
		return errs.NewDatabaseError("create", "failed to create user", err)
	}
	return nil
}

// UpsertUser merges the non-empty profile fields into the user document.
// MergeAll only accepts map data, hence the map.
func (us *userStore) UpsertUser(ctx context.Context, user *models.User) error {
	data := map[string]any{
		"uid":       user.UID,
		"updatedAt": us.clockNow(),
	}
	if user.Email != "" {
		data["email"] = user.Email
	}
	if user.DisplayName != "" {
		data["displayName"] = user.DisplayName
		data["name"] = user.DisplayName
	}
	if user.PhotoURL != "" {
		data["photoUrl"] = user.PhotoURL
	}
	if user.PhoneNumber != "" {
		data["phoneNumber"] = user.PhoneNumber
	}

	if _, err := us.Collection.Doc(user.UID).Set(ctx, data, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

// UpdateUser writes every field set on the patch. An empty photoUrl or
// phoneNumber clears it.
func (us *userStore) UpdateUser(ctx context.Context, uid string, patch *models.UserPatch) error {
	data := map[string]any{
		"uid":       uid,
		"updatedAt": us.clockNow(),
	}
	if patch.DisplayName != nil {
		data["displayName"] = *patch.DisplayName
		data["name"] = *patch.DisplayName
	}
	if patch.PhotoURL != nil {
		data["photoUrl"] = *patch.PhotoURL
	}
	if patch.PhoneNumber != nil {
		data["phoneNumber"] = *patch.PhoneNumber
	}

	if _, err := us.Collection.Doc(uid).Set(ctx, data, firestore.MergeAll); err != nil {
		return errs.NewDatabaseError("update", "failed to update user", err)
	}
	return nil
}

// GetUser returns nil when the user document does not exist.
func (us *userStore) GetUser(ctx context.Context, uid string) (*models.User, error) {
	doc, err := us.Collection.Doc(uid).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errs.NewDatabaseError("read", "failed to get user", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse user data", err)
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Name
	}
	return &user, nil
}

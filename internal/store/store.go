package store

import (
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	transactionsCollection = "transactions"
	cardsCollection        = "cards"
	categoriesCollection   = "categories"
	methodsCollection      = "methods"
	usersCollection        = "users"
)

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// createdAtOr fills a missing createdAt so documents written without one
// still sort and bucket.
func createdAtOr(t *time.Time, now func() time.Time) {
	if t.IsZero() {
		*t = now()
	}
}

// docID adapts snapshots whose model keeps the id outside the document.
func docID(doc *firestore.DocumentSnapshot) string {
	if doc == nil || doc.Ref == nil {
		return ""
	}
	return doc.Ref.ID
}

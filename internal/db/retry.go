package db

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultMaxRetries is how many times an insert is retried after a
// duplicate-key collision before giving up.
const DefaultMaxRetries = 3

// Operation is a unit of database work that may be retried. Each attempt
// must regenerate anything that could have collided (e.g. a fresh _id).
type Operation func() error

// IsDuplicateKeyError reports whether an error is a retryable key collision.
type IsDuplicateKeyError func(err error) bool

// IsMongoDuplicateKeyError reports whether err is a MongoDB duplicate key error.
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// Try executes op with the default retry policy for duplicate key errors.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries executes an operation, retrying duplicate-key failures up to
// maxRetries times with a small incremental backoff. Any other error is
// returned immediately.
func WithRetries(op Operation, maxRetries int, isDuplicateKey IsDuplicateKeyError) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		if !isDuplicateKey(err) {
			return err
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

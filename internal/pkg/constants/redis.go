package constants

// Redis key layouts.
const (
	// RateLockKeyPrefix marks transactions whose quoted exchange rate has
	// been claimed by downstream settlement. Key: ratelock:<transaction_id>.
	RateLockKeyPrefix = "ratelock:"
)

// RateLockKey returns the rate-lock flag key for a transaction.
func RateLockKey(transactionID string) string {
	return RateLockKeyPrefix + transactionID
}

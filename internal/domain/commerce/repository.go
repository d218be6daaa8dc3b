package commerce

import "context"

// Repository loads the two source relations into memory. Implementations own
// schema validation: a source missing a required column must fail the load, not
// degrade per row.
type Repository interface {
	Load(ctx context.Context) (*Dataset, error)
}

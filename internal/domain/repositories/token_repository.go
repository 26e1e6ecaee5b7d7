package repositories

import (
	"context"

	"github.com/tempulse/tip20-indexer/internal/domain/entities"
)

// TokenRepository defines the interface for token catalog operations
type TokenRepository interface {
	// GetByAddress retrieves a token by its address
	GetByAddress(ctx context.Context, address string) (*entities.Token, error)

	// GetAll retrieves all tokens ordered by symbol
	GetAll(ctx context.Context) ([]entities.Token, error)

	// GetAllPaginated retrieves tokens with pagination
	GetAllPaginated(ctx context.Context, limit, offset int) ([]*entities.Token, int64, error)

	// GetAllAddresses returns every tracked token address
	GetAllAddresses(ctx context.Context) ([]string, error)

	// Count returns the total number of tokens
	Count(ctx context.Context) (int64, error)

	// Insert creates a token if it does not already exist (registration is
	// insert-if-absent so both discovery paths stay idempotent)
	Insert(ctx context.Context, token *entities.Token) error

	// UpdateMetadata fills in name/symbol/currency for a placeholder token
	UpdateMetadata(ctx context.Context, address, name, symbol, currency string) error
}

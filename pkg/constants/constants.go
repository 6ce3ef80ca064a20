package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	TxKey   ContextKey = "pgx_tx"
	PoolKey ContextKey = "pgx_pool"
)

var Validate = validator.New(validator.WithRequiredStructEnabled())

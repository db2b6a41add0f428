// tx.go — транзакционный контракт сервисного слоя.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxManager выполняет функцию внутри транзакции БД.
// Реализуется repository.TxRunner; в unit-тестах подменяется фейком.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// FilePath: internal/repository/postgres/postgres.customer.go
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/vitaltrack/pulsehub/internal/database"
	"github.com/vitaltrack/pulsehub/internal/errors"
	"github.com/vitaltrack/pulsehub/internal/models"
	"github.com/vitaltrack/pulsehub/internal/repository"
)

type CustomerRepo struct {
	PostgresBaseRepo
}

func NewCustomerRepository(db database.DB) *CustomerRepo {
	repo := &PostgresBaseRepo{db: db}
	return &CustomerRepo{PostgresBaseRepo: *repo}
}

func (r *CustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, email, password_hash, last_access, created_at)
		VALUES (:id, :email, :password_hash, :last_access, :created_at)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, customer)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return errors.NewDatabaseError("failed to create customer", err)
	}
	return nil
}

func (r *CustomerRepo) Get(ctx context.Context, id string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT * FROM customers WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, customer, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get customer", err)
	}
	return customer, nil
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT * FROM customers WHERE email = $1`

	err := r.db.GetDB().GetContext(ctx, customer, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, errors.NewDatabaseError("failed to get customer by email", err)
	}
	return customer, nil
}

func (r *CustomerRepo) UpdateLastAccess(ctx context.Context, id string, lastAccess time.Time) error {
	query := `UPDATE customers SET last_access = $1 WHERE id = $2`
	result, err := r.db.GetDB().ExecContext(ctx, query, lastAccess, id)
	if err != nil {
		return errors.NewDatabaseError("failed to update last access", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.NewDatabaseError("failed to get rows affected", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

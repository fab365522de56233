// Package store implements the persistence boundary on PostgreSQL. Product
// maintenance goes through a single stored procedure,
// sp_mantenimiento_productos, which owns uniqueness constraints, audit
// columns and the interpretation of the action code. See db/schema.sql for
// the reference definition.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/auth"
	"github.com/producto-inventario/inventory-api/internal/config"
	"github.com/producto-inventario/inventory-api/internal/product"
)

const procCall = `
	SELECT out_code, out_message,
	       pro_id, codigo, nombre, lote_numero, fecha_ingreso,
	       precio::text, stock, estado,
	       usuario_creacion, fecha_creacion, usuario_modificacion, fecha_modificacion
	FROM sp_mantenimiento_productos($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// NewPool opens a pgx connection pool and verifies connectivity once
func NewPool(ctx context.Context, cfg *config.DatabaseConfig, logger *logrus.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.WithField("max_conns", cfg.MaxConns).Info("Postgres pool initialized")
	return pool, nil
}

// Store gives the pipeline its two collaborators: the active-user lookup used
// at login and the stored procedure entry point for products.
type Store struct {
	db           *pgxpool.Pool
	queryTimeout time.Duration
}

func New(db *pgxpool.Pool, queryTimeout time.Duration) *Store {
	return &Store{db: db, queryTimeout: queryTimeout}
}

// Ping reports database connectivity, used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.db.Ping(ctx)
}

// GetByUsername returns the matching active account. Inactive accounts are
// filtered here so a disabled user is indistinguishable from a missing one.
func (s *Store) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var u auth.User
	err := s.db.QueryRow(ctx, `
		SELECT id, username, password_hash, nombre, estado
		FROM usuarios
		WHERE username = $1 AND estado = 'A'
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Nombre, &u.Estado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	return &u, nil
}

// ExecuteCommand runs the procedure for a mutating action and returns only
// its status row.
func (s *Store) ExecuteCommand(ctx context.Context, cmd *product.Command) (product.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var (
		status  product.Status
		discard discardProductColumns
	)
	err := s.db.QueryRow(ctx, procCall, commandArgs(cmd)...).Scan(
		&status.Code, &status.Message,
		&discard.id, &discard.codigo, &discard.nombre, &discard.lote, &discard.fecha,
		&discard.precio, &discard.stock, &discard.estado,
		&discard.usrCre, &discard.fecCre, &discard.usrMod, &discard.fecMod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The procedure always emits a status row; treat silence as an
			// unexpected event, as the old backend did.
			return product.Status{Code: 500, Message: "Ocurrio un evento inesperado."}, nil
		}
		return product.Status{}, fmt.Errorf("sp_mantenimiento_productos (%s) failed: %w", cmd.Action, err)
	}

	return status, nil
}

// ExecuteQuery runs the procedure for the query action. Every row carries the
// status columns next to the product columns; product columns are NULL on the
// bare status row an empty result produces.
func (s *Store) ExecuteQuery(ctx context.Context, cmd *product.Command) ([]product.Product, product.Status, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.Query(ctx, procCall, commandArgs(cmd)...)
	if err != nil {
		return nil, product.Status{}, fmt.Errorf("sp_mantenimiento_productos (%s) failed: %w", cmd.Action, err)
	}
	defer rows.Close()

	status := product.Status{Code: 200, Message: "Consulta exitosa."}
	var products []product.Product

	for rows.Next() {
		var (
			code    int
			message string
			id      *int
			codigo, nombre, lote, estado *string
			fecha   *time.Time
			precio  *string
			stock   *int
			usrCre  *int
			fecCre  *time.Time
			usrMod  *int
			fecMod  *time.Time
		)
		if err := rows.Scan(&code, &message,
			&id, &codigo, &nombre, &lote, &fecha,
			&precio, &stock, &estado,
			&usrCre, &fecCre, &usrMod, &fecMod); err != nil {
			return nil, product.Status{}, fmt.Errorf("scan failed: %w", err)
		}

		status = product.Status{Code: code, Message: message}
		if id == nil {
			continue // status-only row
		}

		p := product.Product{
			ID:                  *id,
			Codigo:              deref(codigo),
			Nombre:              deref(nombre),
			LoteNumero:          deref(lote),
			Estado:              deref(estado),
			UsuarioModificacion: usrMod,
			FechaModificacion:   fecMod,
		}
		if fecha != nil {
			p.FechaIngreso = *fecha
		}
		if stock != nil {
			p.Stock = *stock
		}
		if usrCre != nil {
			p.UsuarioCreacion = *usrCre
		}
		if fecCre != nil {
			p.FechaCreacion = *fecCre
		}
		if precio != nil {
			d, err := decimal.NewFromString(*precio)
			if err != nil {
				return nil, product.Status{}, fmt.Errorf("invalid precio %q: %w", *precio, err)
			}
			p.Precio = d
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, product.Status{}, fmt.Errorf("row iteration failed: %w", err)
	}

	return products, status, nil
}

// commandArgs flattens a command into the procedure's positional parameters:
// accion, pro_id, codigo, nombre, lote_numero, fecha_ingreso, precio, stock,
// estado, user_id.
func commandArgs(cmd *product.Command) []interface{} {
	var precio *string
	if cmd.Precio != nil {
		s := cmd.Precio.String()
		precio = &s
	}
	return []interface{}{
		string(cmd.Action),
		cmd.ID,
		nilIfEmpty(cmd.Codigo),
		nilIfEmpty(cmd.Nombre),
		nilIfEmpty(cmd.LoteNumero),
		cmd.FechaIngreso,
		precio,
		cmd.Stock,
		cmd.Estado,
		cmd.UserID,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type discardProductColumns struct {
	id     *int
	codigo *string
	nombre *string
	lote   *string
	fecha  *time.Time
	precio *string
	stock  *int
	estado *string
	usrCre *int
	fecCre *time.Time
	usrMod *int
	fecMod *time.Time
}

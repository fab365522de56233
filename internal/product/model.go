package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoActivo and EstadoInactivo are the only two product states the
// procedure understands.
const (
	EstadoActivo   = "A"
	EstadoInactivo = "I"
)

// Product is a row returned by the query action. The audit columns are
// populated by the stored procedure and never surface in API responses.
type Product struct {
	ID           int
	Codigo       string
	Nombre       string
	LoteNumero   string
	FechaIngreso time.Time
	Precio       decimal.Decimal
	Stock        int
	Estado       string

	UsuarioCreacion     int
	FechaCreacion       time.Time
	UsuarioModificacion *int
	FechaModificacion   *time.Time
}

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/producto-inventario/inventory-api/internal/product"
)

const fechaLayout = "2006-01-02"

// ProductRequest is the single payload shape the frontend sends for create
// and update. The userId field is accepted for wire compatibility but never
// trusted: the dispatcher overwrites it with the identity from the token.
type ProductRequest struct {
	UserID          int              `json:"userId"`
	ProID           *int             `json:"proId"`
	ProCodigo       string           `json:"proCodigo"`
	ProNombre       string           `json:"proNombre"`
	ProLoteNumero   string           `json:"proLoteNumero"`
	ProFechaIngreso string           `json:"proFechaIngreso"` // YYYY-MM-DD
	ProPrecio       *decimal.Decimal `json:"proPrecio"`
	ProStock        *int             `json:"proStock"`
	ProEstado       *string          `json:"proEstado"`
}

// ToCommand maps the request onto a command, leaving action and user id for
// the dispatcher to stamp.
func (r *ProductRequest) ToCommand() (*product.Command, error) {
	cmd := &product.Command{
		ID:         r.ProID,
		Codigo:     r.ProCodigo,
		Nombre:     r.ProNombre,
		LoteNumero: r.ProLoteNumero,
		Precio:     r.ProPrecio,
		Stock:      r.ProStock,
		Estado:     r.ProEstado,
	}

	if r.ProFechaIngreso != "" {
		t, err := time.ParseInLocation(fechaLayout, r.ProFechaIngreso, time.Local)
		if err != nil {
			return nil, fmt.Errorf("proFechaIngreso: se espera el formato YYYY-MM-DD: %w", err)
		}
		cmd.FechaIngreso = &t
	}

	return cmd, nil
}

// ProductResponse is the record shape the frontend table consumes. Field
// casing matches the original wire contract.
type ProductResponse struct {
	ID           int             `json:"id"`
	Codigo       string          `json:"codigo"`
	Nombre       string          `json:"nombre"`
	LoteNumero   string          `json:"lote_Numero"`
	FechaIngreso string          `json:"fecha_Ingreso"` // YYYY-MM-DD
	Precio       decimal.Decimal `json:"precio"`
	Stock        int             `json:"stock"`
	Estado       string          `json:"estado"`
}

// ToProductResponse maps a stored product onto the wire shape, dropping the
// audit columns.
func ToProductResponse(p product.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		LoteNumero:   p.LoteNumero,
		FechaIngreso: p.FechaIngreso.Format(fechaLayout),
		Precio:       p.Precio,
		Stock:        p.Stock,
		Estado:       p.Estado,
	}
}

// ToProductResponses maps a result set, always returning a non-nil slice so
// the envelope serializes an empty list rather than null.
func ToProductResponses(products []product.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}

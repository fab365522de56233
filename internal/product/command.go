// Package product contains the command model, field validation and dispatch
// logic for the inventory maintenance pipeline. Persistence itself is owned
// by a single stored procedure; this package only prepares and hands off
// commands to it.
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action is the discriminator the stored procedure switches on. It is set
// exclusively by the dispatcher; client-supplied values are never honored.
type Action string

const (
	ActionQuery  Action = "CP"
	ActionCreate Action = "IP"
	ActionUpdate Action = "UP"
)

// Command is the single payload shape the procedure accepts for every
// operation. Optional fields are pointers so "absent" and "zero" stay
// distinguishable through validation.
type Command struct {
	Action       Action
	UserID       int
	ID           *int
	Codigo       string
	Nombre       string
	LoteNumero   string
	FechaIngreso *time.Time
	Precio       *decimal.Decimal
	Stock        *int
	Estado       *string
}

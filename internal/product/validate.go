package product

import (
	"strings"
	"time"

	"github.com/producto-inventario/inventory-api/internal/utils"
)

// FieldError names one violated field with a human-readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the full set of violations found in one command. Empty means
// the command may proceed to dispatch.
type FieldErrors []FieldError

func (e FieldErrors) Error() string { return e.Join() }

// Join flattens the set into a single message for the response envelope.
func (e FieldErrors) Join() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, " ")
}

var validEstados = []string{EstadoActivo, EstadoInactivo}

// ValidateCreate checks a command destined for the insert action. All fields
// are checked and every violation is collected; nothing is dispatched on a
// non-empty result.
func ValidateCreate(cmd *Command) FieldErrors {
	errs := validateCommon(cmd)

	// The legacy rules diverge here: create demands a strictly positive
	// price while update accepts zero.
	// TODO: confirm with the product owner whether update should also
	// reject zero prices, then unify this with ValidateUpdate.
	if cmd.Precio != nil && cmd.Precio.Sign() == 0 {
		errs = append(errs, FieldError{
			Field:   "proPrecio",
			Message: "Faltan campos requeridos o son inválidos (Código, Precio > 0).",
		})
	}
	return errs
}

// ValidateUpdate checks a command destined for the update action, including
// the id and estado rules that only apply there.
func ValidateUpdate(cmd *Command) FieldErrors {
	errs := validateCommon(cmd)

	if cmd.ID == nil || *cmd.ID <= 0 {
		errs = append(errs, FieldError{
			Field:   "proId",
			Message: "ID de producto invalido para actualizar.",
		})
	}
	if cmd.Estado != nil && !utils.ContainsString(validEstados, *cmd.Estado) {
		errs = append(errs, FieldError{
			Field:   "proEstado",
			Message: "El estado debe ser 'A' (activo) o 'I' (inactivo).",
		})
	}
	return errs
}

func validateCommon(cmd *Command) FieldErrors {
	var errs FieldErrors

	if strings.TrimSpace(cmd.Codigo) == "" {
		errs = append(errs, FieldError{
			Field:   "proCodigo",
			Message: "El código del producto es obligatorio.",
		})
	}
	if strings.TrimSpace(cmd.Nombre) == "" {
		errs = append(errs, FieldError{
			Field:   "proNombre",
			Message: "El nombre del producto es obligatorio.",
		})
	}
	if cmd.Precio == nil || cmd.Precio.Sign() < 0 {
		errs = append(errs, FieldError{
			Field:   "proPrecio",
			Message: "El precio debe ser mayor o igual a 0.",
		})
	}
	if cmd.Stock == nil || *cmd.Stock < 0 {
		errs = append(errs, FieldError{
			Field:   "proStock",
			Message: "El stock no puede ser negativo.",
		})
	}
	if strings.TrimSpace(cmd.LoteNumero) == "" {
		errs = append(errs, FieldError{
			Field:   "proLoteNumero",
			Message: "El número de lote es obligatorio.",
		})
	}
	if cmd.FechaIngreso != nil && cmd.FechaIngreso.After(time.Now()) {
		errs = append(errs, FieldError{
			Field:   "proFechaIngreso",
			Message: "La fecha de ingreso no puede ser futura.",
		})
	}
	return errs
}

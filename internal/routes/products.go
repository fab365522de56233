package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/metrics"
	"github.com/producto-inventario/inventory-api/internal/middleware"
	"github.com/producto-inventario/inventory-api/internal/models"
	"github.com/producto-inventario/inventory-api/internal/product"
	apperrors "github.com/producto-inventario/inventory-api/pkg/errors"
)

// ProductHandler handles the product maintenance endpoints. Every request
// walks the same pipeline: identity from the token, field validation for
// mutations, then a single dispatch to the stored procedure.
type ProductHandler struct {
	dispatcher *product.Dispatcher
	logger     *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(dispatcher *product.Dispatcher, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Get lists products, optionally narrowed to one record
// @Summary List products
// @Description List products filtered by estado, or fetch a single product by id
// @Tags Products
// @Produce json
// @Param id query int false "Product id (ignores estado filter)"
// @Param estado query string false "Estado filter, A or I" default(A)
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "Product not found"
// @Security Bearer
// @Router /products [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return apperrors.NewAppError(apperrors.CodeUnauthenticated, "No autorizado.", nil)
	}

	var id *int
	if raw := c.Query("id"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(
				models.Fail(fiber.StatusBadRequest, "El parámetro id debe ser un número entero."),
			)
		}
		id = &v
	}
	estado := c.Query("estado", product.EstadoActivo)

	products, status, err := h.dispatcher.Query(c.Context(), identity.ID, id, &estado)
	if err != nil {
		return err
	}

	if id != nil && len(products) == 0 {
		return apperrors.NewAppErrorf(apperrors.CodeNotFound, nil, "Producto con ID %d no encontrado.", *id)
	}

	return c.JSON(models.OK(status.Code, status.Message, models.ToProductResponses(products)))
}

// Create inserts a new product
// @Summary Create product
// @Description Validate and insert a new product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.ProductRequest true "Product payload"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse "Validation failure"
// @Security Bearer
// @Router /products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return apperrors.NewAppError(apperrors.CodeUnauthenticated, "No autorizado.", nil)
	}

	cmd, failResp := h.parseCommand(c)
	if failResp != nil {
		return c.Status(failResp.Code).JSON(*failResp)
	}

	if violations := product.ValidateCreate(cmd); len(violations) > 0 {
		return h.rejectInvalid(c, violations)
	}

	status, err := h.dispatcher.Create(c.Context(), identity.ID, cmd)
	if err != nil {
		return err
	}

	return c.Status(httpStatus(status.Code)).JSON(models.OK(status.Code, status.Message, nil))
}

// Update modifies an existing product
// @Summary Update product
// @Description Validate and update an existing product, including estado toggles
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product id"
// @Param request body models.ProductRequest true "Product payload"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse "Validation failure or id mismatch"
// @Security Bearer
// @Router /products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return apperrors.NewAppError(apperrors.CodeUnauthenticated, "No autorizado.", nil)
	}

	pathID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.Fail(fiber.StatusBadRequest, "El id de la ruta debe ser un número entero."),
		)
	}

	cmd, failResp := h.parseCommand(c)
	if failResp != nil {
		return c.Status(failResp.Code).JSON(*failResp)
	}

	if cmd.ID == nil || *cmd.ID != pathID {
		return c.Status(fiber.StatusBadRequest).JSON(
			models.Fail(fiber.StatusBadRequest, "El ID de la ruta no coincide con el proId en el cuerpo."),
		)
	}

	if violations := product.ValidateUpdate(cmd); len(violations) > 0 {
		return h.rejectInvalid(c, violations)
	}

	status, err := h.dispatcher.Update(c.Context(), identity.ID, cmd)
	if err != nil {
		return err
	}

	return c.Status(httpStatus(status.Code)).JSON(models.OK(status.Code, status.Message, nil))
}

func (h *ProductHandler) parseCommand(c *fiber.Ctx) (*product.Command, *models.APIResponse) {
	var req models.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		resp := models.Fail(fiber.StatusBadRequest, "Solicitud inválida.")
		return nil, &resp
	}

	cmd, err := req.ToCommand()
	if err != nil {
		resp := models.Fail(fiber.StatusBadRequest, err.Error())
		return nil, &resp
	}
	return cmd, nil
}

func (h *ProductHandler) rejectInvalid(c *fiber.Ctx, violations product.FieldErrors) error {
	for _, v := range violations {
		metrics.RecordValidationFailure(v.Field)
	}
	h.logger.WithFields(logrus.Fields{
		"path":   c.Path(),
		"fields": len(violations),
	}).Warn("Product command rejected by validation")

	return c.Status(fiber.StatusBadRequest).JSON(
		models.Fail(fiber.StatusBadRequest, violations.Join()),
	)
}

// httpStatus guards against domain codes that are not valid HTTP statuses
func httpStatus(code int) int {
	if code < 100 || code > 599 {
		return fiber.StatusInternalServerError
	}
	return code
}

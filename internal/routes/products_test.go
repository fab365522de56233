package routes

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/producto-inventario/inventory-api/internal/models"
	"github.com/producto-inventario/inventory-api/internal/product"
)

func sampleProduct() product.Product {
	return product.Product{
		ID:           5,
		Codigo:       "PRD-001",
		Nombre:       "Paracetamol 500mg",
		LoteNumero:   "L-2024-01",
		FechaIngreso: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Precio:       decimal.NewFromFloat(25.50),
		Stock:        100,
		Estado:       product.EstadoActivo,
	}
}

func validProductRequest() models.ProductRequest {
	precio := decimal.NewFromFloat(25.50)
	stock := 100
	return models.ProductRequest{
		ProCodigo:       "PRD-001",
		ProNombre:       "Paracetamol 500mg",
		ProLoteNumero:   "L-2024-01",
		ProFechaIngreso: "2024-03-10",
		ProPrecio:       &precio,
		ProStock:        &stock,
	}
}

func TestGetProducts_ListsWithEstadoFilter(t *testing.T) {
	store := &stubProductStore{
		products: []product.Product{sampleProduct()},
		status:   product.Status{Code: 200, Message: "Consulta exitosa."},
	}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodGet, "/api/products/?estado=I", env.token(t), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, "Consulta exitosa.", body.Message)

	require.NotNil(t, store.lastCommand)
	assert.Equal(t, product.ActionQuery, store.lastCommand.Action)
	assert.Equal(t, 42, store.lastCommand.UserID)
	assert.Nil(t, store.lastCommand.ID)
	require.NotNil(t, store.lastCommand.Estado)
	assert.Equal(t, product.EstadoInactivo, *store.lastCommand.Estado)

	var data []models.ProductResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, 5, data[0].ID)
	assert.Equal(t, "PRD-001", data[0].Codigo)
	assert.Equal(t, "2024-03-10", data[0].FechaIngreso)
	assert.True(t, decimal.NewFromFloat(25.50).Equal(data[0].Precio))
}

func TestGetProducts_DefaultEstadoIsActive(t *testing.T) {
	store := &stubProductStore{status: product.Status{Code: 200, Message: "Consulta exitosa."}}
	env := newTestEnv(t, store)

	_, body := env.request(t, http.MethodGet, "/api/products/", env.token(t), nil)

	require.NotNil(t, store.lastCommand.Estado)
	assert.Equal(t, product.EstadoActivo, *store.lastCommand.Estado)

	// No rows still serializes an empty list, not null
	assert.Equal(t, "[]", string(body.Data))
}

func TestGetProducts_ByID_NotFound(t *testing.T) {
	store := &stubProductStore{status: product.Status{Code: 200, Message: "Consulta exitosa."}}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodGet, "/api/products/?id=5&estado=A", env.token(t), nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 404, body.Code)
	assert.Equal(t, "Producto con ID 5 no encontrado.", body.Message)
	assert.Equal(t, "null", string(body.Data))

	require.NotNil(t, store.lastCommand.ID)
	assert.Equal(t, 5, *store.lastCommand.ID)
	assert.Nil(t, store.lastCommand.Estado, "estado filter is ignored for id lookups")
}

func TestGetProducts_ByID_Found(t *testing.T) {
	store := &stubProductStore{
		products: []product.Product{sampleProduct()},
		status:   product.Status{Code: 200, Message: "Consulta exitosa."},
	}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodGet, "/api/products/?id=5", env.token(t), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data []models.ProductResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, 5, data[0].ID)
}

func TestGetProducts_BadIDParam(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodGet, "/api/products/?id=abc", env.token(t), nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 400, body.Code)
	assert.Zero(t, store.calls)
}

func TestCreateProduct_Success_StampsActingUser(t *testing.T) {
	store := &stubProductStore{status: product.Status{Code: 200, Message: "Producto registrado correctamente."}}
	env := newTestEnv(t, store)

	req := validProductRequest()
	req.UserID = 999 // must be overridden by the token identity

	resp, body := env.request(t, http.MethodPost, "/api/products/", env.token(t), req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, "Producto registrado correctamente.", body.Message)

	require.Equal(t, 1, store.calls)
	assert.Equal(t, product.ActionCreate, store.lastCommand.Action)
	assert.Equal(t, 42, store.lastCommand.UserID)
}

func TestCreateProduct_ValidationFailure_NeverDispatches(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodPost, "/api/products/", env.token(t), models.ProductRequest{})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 400, body.Code)
	// All violations are reported at once
	assert.Contains(t, body.Message, "El código del producto es obligatorio.")
	assert.Contains(t, body.Message, "El nombre del producto es obligatorio.")
	assert.Contains(t, body.Message, "El número de lote es obligatorio.")
	assert.Zero(t, store.calls)
}

func TestCreateProduct_ZeroPriceRejected(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	req := validProductRequest()
	zero := decimal.Zero
	req.ProPrecio = &zero

	resp, _ := env.request(t, http.MethodPost, "/api/products/", env.token(t), req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, store.calls)
}

func TestCreateProduct_BadDateFormat(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	req := validProductRequest()
	req.ProFechaIngreso = "10/03/2024"

	resp, body := env.request(t, http.MethodPost, "/api/products/", env.token(t), req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Message, "YYYY-MM-DD")
	assert.Zero(t, store.calls)
}

func TestUpdateProduct_Success(t *testing.T) {
	store := &stubProductStore{status: product.Status{Code: 200, Message: "Producto actualizado correctamente."}}
	env := newTestEnv(t, store)

	req := validProductRequest()
	id := 7
	estado := product.EstadoInactivo
	req.ProID = &id
	req.ProEstado = &estado

	resp, body := env.request(t, http.MethodPut, "/api/products/7", env.token(t), req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Producto actualizado correctamente.", body.Message)

	require.Equal(t, 1, store.calls)
	assert.Equal(t, product.ActionUpdate, store.lastCommand.Action)
	assert.Equal(t, 42, store.lastCommand.UserID)
	require.NotNil(t, store.lastCommand.Estado)
	assert.Equal(t, product.EstadoInactivo, *store.lastCommand.Estado)
}

func TestUpdateProduct_PathBodyIDMismatch(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	req := validProductRequest()
	id := 8
	req.ProID = &id

	resp, body := env.request(t, http.MethodPut, "/api/products/7", env.token(t), req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 400, body.Code)
	assert.Equal(t, "El ID de la ruta no coincide con el proId en el cuerpo.", body.Message)
	assert.Zero(t, store.calls, "mismatched ids must never reach dispatch")
}

func TestUpdateProduct_MissingBodyID(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	resp, _ := env.request(t, http.MethodPut, "/api/products/7", env.token(t), validProductRequest())

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, store.calls)
}

func TestUpdateProduct_InvalidEstado(t *testing.T) {
	store := &stubProductStore{}
	env := newTestEnv(t, store)

	req := validProductRequest()
	id := 7
	bogus := "X"
	req.ProID = &id
	req.ProEstado = &bogus

	resp, body := env.request(t, http.MethodPut, "/api/products/7", env.token(t), req)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body.Message, "El estado debe ser 'A' (activo) o 'I' (inactivo).")
	assert.Zero(t, store.calls)
}

func TestProductCommand_StoreVerdictPassesThrough(t *testing.T) {
	store := &stubProductStore{status: product.Status{Code: 409, Message: "El código PRD-001 ya existe."}}
	env := newTestEnv(t, store)

	resp, body := env.request(t, http.MethodPost, "/api/products/", env.token(t), validProductRequest())

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 409, body.Code)
	assert.Equal(t, "El código PRD-001 ya existe.", body.Message)
}

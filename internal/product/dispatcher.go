package product

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/producto-inventario/inventory-api/internal/logging"
	"github.com/producto-inventario/inventory-api/internal/metrics"
	"github.com/producto-inventario/inventory-api/internal/middleware"
)

// Status is the code/message pair every procedure call returns. The code
// doubles as the HTTP status of the response envelope.
type Status struct {
	Code    int
	Message string
}

// Store is the persistence boundary: one stored procedure reachable through
// two call shapes. Queries come back with rows, commands with only a status.
// Uniqueness constraints, auditing and the interpretation of action codes all
// live behind this interface.
type Store interface {
	ExecuteQuery(ctx context.Context, cmd *Command) ([]Product, Status, error)
	ExecuteCommand(ctx context.Context, cmd *Command) (Status, error)
}

// Dispatcher stamps validated commands with the action code and the acting
// user and issues exactly one store call per request. No retries, no
// transaction coordination; the procedure's verdict passes through untouched.
type Dispatcher struct {
	store  Store
	logger *logrus.Logger
}

func NewDispatcher(store Store, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{store: store, logger: logger}
}

// Query runs the CP action. When an id filter is present the estado filter is
// dropped, so a direct lookup sees the record regardless of its state.
func (d *Dispatcher) Query(ctx context.Context, userID int, id *int, estado *string) ([]Product, Status, error) {
	if id != nil {
		estado = nil
	}

	cmd := &Command{
		Action: ActionQuery,
		UserID: userID,
		ID:     id,
		Estado: estado,
	}

	ctx, span := middleware.StartSpan(ctx, "store.query")
	defer span.End()

	start := time.Now()
	products, status, err := d.store.ExecuteQuery(ctx, cmd)
	metrics.RecordStoreCall(string(ActionQuery), status.Code, time.Since(start), err)
	if err != nil {
		return nil, Status{}, err
	}

	logging.WithUserID(d.logger, userID).WithFields(logrus.Fields{
		"action": ActionQuery,
		"pro_id": intOrNil(id),
		"rows":   len(products),
		"code":   status.Code,
	}).Info("Product query dispatched")

	return products, status, nil
}

// Create runs the IP action for an already validated command.
func (d *Dispatcher) Create(ctx context.Context, userID int, cmd *Command) (Status, error) {
	return d.execute(ctx, ActionCreate, userID, cmd)
}

// Update runs the UP action for an already validated command.
func (d *Dispatcher) Update(ctx context.Context, userID int, cmd *Command) (Status, error) {
	return d.execute(ctx, ActionUpdate, userID, cmd)
}

func (d *Dispatcher) execute(ctx context.Context, action Action, userID int, cmd *Command) (Status, error) {
	// The action and the acting user are stamped here and nowhere else;
	// whatever the client put in those fields is discarded.
	cmd.Action = action
	cmd.UserID = userID

	ctx, span := middleware.StartSpan(ctx, "store.command")
	defer span.End()

	start := time.Now()
	status, err := d.store.ExecuteCommand(ctx, cmd)
	metrics.RecordStoreCall(string(action), status.Code, time.Since(start), err)
	if err != nil {
		return Status{}, err
	}

	logging.WithUserID(d.logger, userID).WithFields(logrus.Fields{
		"action": action,
		"pro_id": intOrNil(cmd.ID),
		"code":   status.Code,
	}).Info("Product command dispatched")

	return status, nil
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

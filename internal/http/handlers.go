package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/shopping-cart-service/internal/cart"
	"github.com/fairyhunter13/shopping-cart-service/internal/command"
	"github.com/fairyhunter13/shopping-cart-service/internal/config"
	"github.com/fairyhunter13/shopping-cart-service/internal/details"
	"github.com/fairyhunter13/shopping-cart-service/internal/etag"
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/inventory"
	"github.com/fairyhunter13/shopping-cart-service/internal/obs"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

// InventoryClient is the slice of the inventory RPC client the handlers use.
type InventoryClient interface {
	RequestQuantityCheck(ctx context.Context, productID string) (int64, error)
	ConfirmCart(ctx context.Context, shoppingCartID string, items []inventory.ConfirmationItem) error
}

// App wires the command pipeline, read model, and inventory client into
// HTTP handlers.
type App struct {
	Cfg       config.Config
	Store     eventstore.EventStore
	Carts     details.Collection
	Inventory InventoryClient

	started          time.Time
	commandsAccepted atomic.Uint64
	commandsRejected atomic.Uint64
}

// NewApp constructs an App over its collaborators.
func NewApp(cfg config.Config, store eventstore.EventStore, carts details.Collection, inv InventoryClient) *App {
	return &App{Cfg: cfg, Store: store, Carts: carts, Inventory: inv, started: time.Now()}
}

type productItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

func decodeProductItem(r *http.Request) (productItemRequest, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return productItemRequest{}, validate.NewValidationError("UNSUPPORTED_MEDIA_TYPE")
	}
	var req productItemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return productItemRequest{}, validate.NewValidationError("INVALID_JSON")
	}
	if err := validate.AssertNotEmptyString(req.ProductID); err != nil {
		return productItemRequest{}, err
	}
	if err := validate.AssertPositiveQuantity(req.Quantity); err != nil {
		return productItemRequest{}, err
	}
	return req, nil
}

// rpcContext bounds inventory calls when a timeout is configured; otherwise
// the wait inherits the request context unchanged.
func (a *App) rpcContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Cfg.InventoryRPCTimeout > 0 {
		return context.WithTimeout(ctx, a.Cfg.InventoryRPCTimeout)
	}
	return ctx, func() {}
}

func (a *App) fail(w http.ResponseWriter, err error) {
	a.commandsRejected.Add(1)
	WriteError(w, err)
}

func (a *App) openCartHandler(w http.ResponseWriter, r *http.Request) {
	clientID := r.PathValue("clientID")
	if err := validate.AssertNotEmptyString(clientID); err != nil {
		a.fail(w, err)
		return
	}
	shoppingCartID := uuid.NewString()
	streamName := cart.StreamName(shoppingCartID)

	handle := command.Create(a.Store, cart.OpenShoppingCart)
	res, err := handle(r.Context(), streamName, cart.OpenShoppingCartCommand{
		ShoppingCartID: shoppingCartID,
		ClientID:       clientID,
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.commandsAccepted.Add(1)
	a.syncDetails(r.Context(), shoppingCartID)

	w.Header().Set("ETag", etag.FromRevision(res.NextExpectedRevision))
	w.Header().Set("Location", r.URL.Path+"/"+shoppingCartID)
	writeJSON(w, http.StatusCreated, ResJSON{
		StatusCode: http.StatusCreated,
		Message:    "Success",
		Data:       map[string]string{"shoppingCartId": shoppingCartID},
	})
	obs.Logger.Info("shopping_cart_opened",
		"shopping_cart_id", shoppingCartID,
		"client_id", clientID,
		"request_id", RequestIDFromContext(r.Context()),
	)
}

func (a *App) addProductItemHandler(w http.ResponseWriter, r *http.Request) {
	shoppingCartID := r.PathValue("shoppingCartID")
	if err := validate.AssertNotEmptyString(shoppingCartID); err != nil {
		a.fail(w, err)
		return
	}
	expected, err := etag.ToExpectedRevision(r.Header.Get("If-Match"))
	if err != nil {
		a.fail(w, err)
		return
	}
	req, err := decodeProductItem(r)
	if err != nil {
		a.fail(w, err)
		return
	}

	rpcCtx, cancel := a.rpcContext(r.Context())
	defer cancel()
	available, err := a.Inventory.RequestQuantityCheck(rpcCtx, req.ProductID)
	if err != nil {
		a.fail(w, err)
		return
	}
	if available < req.Quantity {
		a.commandsRejected.Add(1)
		WriteJSONError(w, http.StatusConflict, "INSUFFICIENT_INVENTORY", "requested quantity exceeds inventory")
		return
	}

	handle := command.Update(a.Store, cart.AddProductItemToShoppingCart)
	res, err := handle(r.Context(), cart.StreamName(shoppingCartID), cart.AddProductItemCommand{
		ShoppingCartID: shoppingCartID,
		ProductItem:    cart.ProductItem{ProductID: req.ProductID, Quantity: req.Quantity},
	}, expected)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.commandsAccepted.Add(1)
	a.syncDetails(r.Context(), shoppingCartID)

	w.Header().Set("ETag", etag.FromRevision(res.NextExpectedRevision))
	writeJSON(w, http.StatusOK, ResJSON{StatusCode: http.StatusOK, Message: "Success"})
}

func (a *App) removeProductItemHandler(w http.ResponseWriter, r *http.Request) {
	shoppingCartID := r.PathValue("shoppingCartID")
	if err := validate.AssertNotEmptyString(shoppingCartID); err != nil {
		a.fail(w, err)
		return
	}
	expected, err := etag.ToExpectedRevision(r.Header.Get("If-Match"))
	if err != nil {
		a.fail(w, err)
		return
	}
	req, err := decodeProductItem(r)
	if err != nil {
		a.fail(w, err)
		return
	}

	handle := command.Update(a.Store, cart.RemoveProductItemFromShoppingCart)
	res, err := handle(r.Context(), cart.StreamName(shoppingCartID), cart.RemoveProductItemCommand{
		ShoppingCartID: shoppingCartID,
		ProductItem:    cart.ProductItem{ProductID: req.ProductID, Quantity: req.Quantity},
	}, expected)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.commandsAccepted.Add(1)
	a.syncDetails(r.Context(), shoppingCartID)

	w.Header().Set("ETag", etag.FromRevision(res.NextExpectedRevision))
	writeJSON(w, http.StatusOK, ResJSON{StatusCode: http.StatusOK, Message: "Success"})
}

func (a *App) confirmCartHandler(w http.ResponseWriter, r *http.Request) {
	shoppingCartID := r.PathValue("shoppingCartID")
	if err := validate.AssertNotEmptyString(shoppingCartID); err != nil {
		a.fail(w, err)
		return
	}
	expected, err := etag.ToExpectedRevision(r.Header.Get("If-Match"))
	if err != nil {
		a.fail(w, err)
		return
	}

	streamName := cart.StreamName(shoppingCartID)
	history, err := a.Store.ReadStream(r.Context(), streamName)
	if err != nil {
		a.fail(w, err)
		return
	}
	state, err := cart.Current(history)
	if err != nil {
		a.fail(w, err)
		return
	}

	// Reject a stale token before the confirmation reaches inventory; the
	// RPC is an external side effect and must not fire for a request that
	// is going to fail the precondition anyway.
	current := eventstore.NoStream
	if len(history) > 0 {
		current = history[len(history)-1].Revision
	}
	if current != expected {
		a.fail(w, fmt.Errorf("%w: stream %s expected %d actual %d",
			eventstore.ErrRevisionConflict, streamName, expected, current))
		return
	}

	if state.Status == cart.StatusOpened {
		items := make([]inventory.ConfirmationItem, 0, len(state.Items))
		for productID, qty := range state.Items {
			items = append(items, inventory.ConfirmationItem{ProductID: productID, Quantity: qty})
		}
		rpcCtx, cancel := a.rpcContext(r.Context())
		defer cancel()
		if err := a.Inventory.ConfirmCart(rpcCtx, shoppingCartID, items); err != nil {
			a.fail(w, err)
			return
		}
	}

	handle := command.Update(a.Store, cart.ConfirmShoppingCart)
	res, err := handle(r.Context(), streamName, cart.ConfirmShoppingCartCommand{
		ShoppingCartID: shoppingCartID,
	}, expected)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.commandsAccepted.Add(1)
	a.syncDetails(r.Context(), shoppingCartID)

	w.Header().Set("ETag", etag.FromRevision(res.NextExpectedRevision))
	writeJSON(w, http.StatusOK, ResJSON{StatusCode: http.StatusOK, Message: "Success"})
}

func (a *App) getCartHandler(w http.ResponseWriter, r *http.Request) {
	shoppingCartID := r.PathValue("shoppingCartID")
	doc, err := a.Carts.Get(r.Context(), shoppingCartID)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Set("ETag", etag.FromRevision(doc.Revision))
	writeJSON(w, http.StatusOK, ResJSON{StatusCode: http.StatusOK, Message: "Success", Data: doc})
}

// syncDetails rebuilds the read-model document from the stream. Failures
// are logged, not surfaced: the write already succeeded.
func (a *App) syncDetails(ctx context.Context, shoppingCartID string) {
	history, err := a.Store.ReadStream(ctx, cart.StreamName(shoppingCartID))
	if err != nil || len(history) == 0 {
		return
	}
	state, err := cart.Current(history)
	if err != nil {
		obs.Logger.Error("details_fold_failed", "shopping_cart_id", shoppingCartID, "error", err)
		return
	}
	doc := details.FromState(state, history[len(history)-1].Revision)
	if err := a.Carts.Upsert(ctx, doc); err != nil {
		obs.Logger.Error("details_upsert_failed", "shopping_cart_id", shoppingCartID, "error", err)
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	m := map[string]any{
		"commands_accepted": a.commandsAccepted.Load(),
		"commands_rejected": a.commandsRejected.Load(),
		"uptime_sec":        time.Since(a.started).Seconds(),
	}
	if ms, ok := a.Store.(*eventstore.MemoryStore); ok {
		m["streams"] = ms.StreamCount()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}

package httpapi

import (
	"expvar"
	"net/http"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /clients/{clientID}/shopping-carts", app.openCartHandler)
	mux.HandleFunc("POST /clients/{clientID}/shopping-carts/{shoppingCartID}/product-items", app.addProductItemHandler)
	mux.HandleFunc("DELETE /clients/{clientID}/shopping-carts/{shoppingCartID}/product-items", app.removeProductItemHandler)
	mux.HandleFunc("PUT /clients/{clientID}/shopping-carts/{shoppingCartID}", app.confirmCartHandler)
	mux.HandleFunc("GET /clients/{clientID}/shopping-carts/{shoppingCartID}", app.getCartHandler)
	mux.HandleFunc("/healthz", app.healthHandler)
	mux.HandleFunc("/debug/metrics", app.metricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/openapi.yaml", app.openapiHandler)
	mux.HandleFunc("/docs", app.docsHandler)
	return WithRequestID(WithLogging(mux))
}

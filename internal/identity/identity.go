// Package identity resolves the customer pricing context from the session
// token. The storefront is anonymous-first: requests without a token, or
// with an unparsable one, price as consumers.
package identity

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"

	"github.com/drucklab/backend-shop/internal/pricing"
)

type contextKey struct{}

// ClaimCustomerClass is the session claim carrying the pricing class.
const ClaimCustomerClass = "customerClass"

// Resolver parses session tokens into customer pricing contexts.
type Resolver struct {
	Secret    []byte
	VATRate   decimal.Decimal
	ClockSkew time.Duration
}

// Middleware attaches the resolved CustomerContext to every request. It
// never rejects: a missing or invalid token yields the consumer default.
func (rv Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer := rv.Resolve(extractToken(r))
		next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), customer)))
	})
}

// Resolve maps a raw session token onto a CustomerContext.
func (rv Resolver) Resolve(token string) pricing.CustomerContext {
	customer := pricing.CustomerContext{Class: pricing.ClassConsumer, VATRate: rv.VATRate}
	if token == "" || len(rv.Secret) == 0 {
		return customer
	}
	options := []jwt.ParseOption{jwt.WithKey(jwa.HS256, rv.Secret)}
	if rv.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(rv.ClockSkew))
	}
	parsed, err := jwt.ParseString(token, options...)
	if err != nil {
		return customer
	}
	raw, ok := parsed.Get(ClaimCustomerClass)
	if !ok {
		return customer
	}
	if class, ok := raw.(string); ok && pricing.CustomerClass(class) == pricing.ClassBusiness {
		customer.Class = pricing.ClassBusiness
	}
	return customer
}

// WithCustomer stores the customer pricing context.
func WithCustomer(ctx context.Context, customer pricing.CustomerContext) context.Context {
	return context.WithValue(ctx, contextKey{}, customer)
}

// CustomerFromContext returns the stored pricing context, falling back to
// a consumer with the given VAT rate when the middleware did not run.
func CustomerFromContext(ctx context.Context, vatRate decimal.Decimal) pricing.CustomerContext {
	if customer, ok := ctx.Value(contextKey{}).(pricing.CustomerContext); ok {
		return customer
	}
	return pricing.CustomerContext{Class: pricing.ClassConsumer, VATRate: vatRate}
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

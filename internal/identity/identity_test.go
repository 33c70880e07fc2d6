package identity

import (
	"context"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/drucklab/backend-shop/internal/pricing"
)

var testSecret = []byte("test-secret-test-secret-test-1234")

func signToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	builder := jwt.NewBuilder().
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour))
	for k, v := range claims {
		builder = builder.Claim(k, v)
	}
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, testSecret))
	require.NoError(t, err)
	return string(signed)
}

func TestResolveBusinessClass(t *testing.T) {
	rv := Resolver{Secret: testSecret, VATRate: decimal.RequireFromString("0.19")}
	token := signToken(t, map[string]any{ClaimCustomerClass: "business"})

	customer := rv.Resolve(token)
	require.Equal(t, pricing.ClassBusiness, customer.Class)
}

func TestResolveDefaultsToConsumer(t *testing.T) {
	rv := Resolver{Secret: testSecret, VATRate: decimal.RequireFromString("0.19")}

	require.Equal(t, pricing.ClassConsumer, rv.Resolve("").Class)
	require.Equal(t, pricing.ClassConsumer, rv.Resolve("not-a-token").Class)
	require.Equal(t, pricing.ClassConsumer, rv.Resolve(signToken(t, nil)).Class)
	require.Equal(t, pricing.ClassConsumer, rv.Resolve(signToken(t, map[string]any{ClaimCustomerClass: "wholesale"})).Class)
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	rv := Resolver{Secret: testSecret}

	builder := jwt.NewBuilder().Expiration(time.Now().Add(time.Hour)).Claim(ClaimCustomerClass, "business")
	token, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte("another-secret-another-secret-99")))
	require.NoError(t, err)

	require.Equal(t, pricing.ClassConsumer, rv.Resolve(string(signed)).Class)
}

func TestCustomerFromContextFallback(t *testing.T) {
	vat := decimal.RequireFromString("0.19")
	customer := CustomerFromContext(context.Background(), vat)
	require.Equal(t, pricing.ClassConsumer, customer.Class)
	require.True(t, customer.VATRate.Equal(vat))

	ctx := WithCustomer(context.Background(), pricing.CustomerContext{Class: pricing.ClassBusiness, VATRate: vat})
	require.Equal(t, pricing.ClassBusiness, CustomerFromContext(ctx, vat).Class)
}

package tracing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.method", "GET"),
		attribute.String("user.password", "x"),
		attribute.String("client.email", "a@b.c"),
		attribute.String("auth_token", "t"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.method"), attrs[0].Key)
}

func TestSafeErrorKeepsOnlyType(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	err := SafeError(errors.New("secret detail"))
	assert.Equal(t, "*errors.errorString", err.Error())
}

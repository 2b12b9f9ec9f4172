// Package opaqueid converts internal identifiers to and from the opaque ids
// exposed to API clients. An opaque id is the base64 encoding of
// "reaction/<namespace>:<id>".
package opaqueid

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/toko-checkout/internal/common"
)

// Namespaces used by the checkout API.
const (
	Cart     = "Cart"
	CartItem = "CartItem"
	Product  = "Product"
)

const prefix = "reaction/"

// ErrMalformed indicates an opaque id that does not decode to the expected namespace.
var ErrMalformed = errors.New("malformed opaque id")

// Encode returns the opaque form of id within namespace.
func Encode(namespace, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(prefix + namespace + ":" + id))
}

// Decode returns the internal id carried by opaque. It fails with an
// INVALID_PARAMETER AppError when opaque is not valid base64, belongs to a
// different namespace, or carries an empty id.
func Decode(namespace, opaque string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(opaque))
	if err != nil {
		return "", invalid(namespace, opaque, fmt.Errorf("%w: %v", ErrMalformed, err))
	}
	want := prefix + namespace + ":"
	decoded := string(raw)
	if !strings.HasPrefix(decoded, want) {
		return "", invalid(namespace, opaque, fmt.Errorf("%w: expected %s namespace", ErrMalformed, namespace))
	}
	id := strings.TrimPrefix(decoded, want)
	if id == "" {
		return "", invalid(namespace, opaque, fmt.Errorf("%w: empty id", ErrMalformed))
	}
	return id, nil
}

func invalid(namespace, opaque string, err error) error {
	return common.InvalidParameter(
		fmt.Sprintf("invalid %s id", namespace),
		err,
		map[string]string{"namespace": namespace, "id": opaque},
	)
}

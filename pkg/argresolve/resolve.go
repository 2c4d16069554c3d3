// Package argresolve extracts named parameters from host-style invocation
// tokens of the form -name=value.
package argresolve

import (
	"fmt"
	"strings"

	animerrors "github.com/provide-io/animbundle/pkg/errors"
)

const quoteChars = `"'`

// Lookup returns the value of the first token matching -<flag>=<value>.
// Enclosing quote characters are stripped from the token, and from the value,
// before comparison. The value is everything after the first '='.
func Lookup(flag string, args []string) (string, bool) {
	prefix := "-" + flag + "="
	for _, arg := range args {
		token := strings.Trim(arg, quoteChars)
		if !strings.HasPrefix(token, prefix) {
			continue
		}
		return strings.Trim(token[len(prefix):], quoteChars), true
	}
	return "", false
}

// Resolve is Lookup for a required parameter. A missing token yields an
// error matching errors.ErrArgumentNotFound.
func Resolve(flag string, args []string) (string, error) {
	value, ok := Lookup(flag, args)
	if !ok {
		return "", fmt.Errorf("%w: -%s=<value>", animerrors.ErrArgumentNotFound, flag)
	}
	return value, nil
}

// ResolveDefault is Lookup with a fallback value.
func ResolveDefault(flag string, args []string, fallback string) string {
	if value, ok := Lookup(flag, args); ok {
		return value
	}
	return fallback
}

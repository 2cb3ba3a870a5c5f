package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Gate decides whether a request may modify the tree.
type Gate interface {
	EditMode(r *http.Request) bool
}

// GateFunc adapts a function to [Gate].
type GateFunc func(r *http.Request) bool

func (f GateFunc) EditMode(r *http.Request) bool { return f(r) }

// ReadOnly never grants edit mode.
var ReadOnly Gate = GateFunc(func(*http.Request) bool { return false })

// TokenGate grants edit mode to requests with "Authorization: Bearer
// <Token>". An empty token grants nothing.
type TokenGate struct {
	Token string
}

func (g TokenGate) EditMode(r *http.Request) bool {
	if g.Token == "" {
		return false
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(g.Token)) == 1
}

// Package transform implements the cryptogram transform language ("jq-lite"):
// a small first-class expression language over JSON values used to reshape
// request and response payloads between cryptogram steps.
package transform

// Expr is a node in the transform AST. Every variant denotes a pure
// function Value -> Value relative to an ambient Scratchpad, with the
// sole exception of EmitEvent, which is effectful through an EventSink.
type Expr interface {
	exprNode()
}

// At projects a field of a JSON object. Error if the field is absent or
// the input isn't an object.
type At struct {
	Key string
}

// Array maps Sub over each element of a JSON array.
type Array struct {
	Sub Expr
}

// ObjectEntry is one declared key/sub-expression pair of an Object node.
// Order is preserved; repeated keys are permitted and the last one wins
// on materialize.
type ObjectEntry struct {
	Key string
	Sub Expr
}

// Object builds a JSON object by evaluating each entry's Sub against the
// same input and assembling the results in declared key order.
type Object struct {
	Entries []ObjectEntry
}

// Splat evaluates each Sub in order against the same input; the result is
// the last one evaluated. It is the sequencing vehicle used together with
// Set and EmitEvent for side effects.
type Splat struct {
	Subs []Expr
}

// Set stores the current value in the scratchpad under Name and passes
// the current value through unchanged.
type Set struct {
	Name string
}

// Get replaces the current value with the scratchpad's Name entry. Error
// if the entry is missing.
type Get struct {
	Name string
}

// Const returns a literal JSON value, ignoring the input.
type Const struct {
	Value any
}

// Identity returns the input unchanged.
type Identity struct{}

// Map pipes Second's evaluation over First's output: Map(a, b) applies a
// to the input, then b to a's result.
type Map struct {
	First  Expr
	Second Expr
}

// Length reports the size of a JSON array or object. Any other input
// yields JSON null and a warning (not an error).
type Length struct{}

// Join concatenates an array of strings with Sep. Non-string elements are
// skipped with a warning. A non-array input is an error.
type Join struct {
	Sep string
}

// Default evaluates Sub against null when the current value is JSON null;
// otherwise it passes the current value through unchanged.
type Default struct {
	Sub Expr
}

// Flatten concatenates an array of arrays into a single array. Any other
// shape is a fatal error.
type Flatten struct{}

// EmitEvent calls the configured EventSink with the current value as
// payload, then passes the current value through unchanged. OwnerID is
// optional (nil when not bound to an authenticated caller).
type EmitEvent struct {
	OwnerID     *string
	Topic       string
	EventType   string
	ContextID   string
	PageContext any
}

func (At) exprNode()        {}
func (Array) exprNode()     {}
func (Object) exprNode()    {}
func (Splat) exprNode()     {}
func (Set) exprNode()       {}
func (Get) exprNode()       {}
func (Const) exprNode()     {}
func (Identity) exprNode()  {}
func (Map) exprNode()       {}
func (Length) exprNode()    {}
func (Join) exprNode()      {}
func (Default) exprNode()   {}
func (Flatten) exprNode()   {}
func (EmitEvent) exprNode() {}

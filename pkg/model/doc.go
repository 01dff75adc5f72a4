// Package model defines the form model renderers consume. The order and
// contact engines project their state into a FormModel on every render; the
// model is a read-only snapshot and nothing flows back from it into the engine.
// Groups and roster rows are object fields with Nested children, controls are
// selected through Field.Widget, and conditional inputs carry a VisibleWhen
// rule (see package visibility) alongside a pre-evaluated Hidden flag.
package model

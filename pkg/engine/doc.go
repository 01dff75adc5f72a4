// Package engine holds the state of the order and contact forms.
//
// An Order is built from a catalog.ServiceDescriptor and carries the base
// contact fields plus the optional groups the descriptor asks for: house
// type, window count, a pet roster, a babysitting roster and the date range.
// Engine state is the single source of truth. Renderers receive a projection
// of it (Model) and posted values flow back in through Apply; nothing reads
// state back out of rendered markup.
//
// Engine values are owned by one request or terminal session and are not safe
// for concurrent use.
package engine

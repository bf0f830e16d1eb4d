package model

// SourceKind is the event vocabulary a watched contract speaks.
type SourceKind string

const (
	SourceHub     SourceKind = "hub"
	SourceFactory SourceKind = "factory"
	SourceLand    SourceKind = "land"
	SourceSlot    SourceKind = "slot"
)

// SourceKinds lists every kind in dispatch order.
var SourceKinds = []SourceKind{SourceHub, SourceFactory, SourceLand, SourceSlot}

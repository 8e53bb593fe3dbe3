package component

import "github.com/tanema/gween"

type PopupType uint8

const (
	PopupSmall PopupType = iota
	PopupMedium
	PopupLarge
)

// Popup is a floating message attached to an entity. Rise drives the
// vertical offset; the popup is destroyed when it finishes.
type Popup struct {
	Message string
	Type    PopupType
	Owner   uint64
	X       float64
	Y       float64
	Offset  float64
	Rise    *gween.Tween
}

var PopupComponent = NewComponent[Popup]()

package system

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/milk9111/leap/common"
	"github.com/milk9111/leap/ecs"
	"github.com/milk9111/leap/ecs/component"
)

type popupStyle struct {
	rise     float32
	duration float32
}

var popupStyles = map[component.PopupType]popupStyle{
	component.PopupSmall:  {rise: 16, duration: 1},
	component.PopupMedium: {rise: 24, duration: 1.5},
	component.PopupLarge:  {rise: 32, duration: 2},
}

// PopupSystem spawns floating messages above entities and removes them when
// their rise tween completes.
type PopupSystem struct{}

func NewPopupSystem() *PopupSystem {
	return &PopupSystem{}
}

// PopupEntity spawns msg above owner.
func (s *PopupSystem) PopupEntity(w *ecs.World, msg string, owner ecs.Entity, typ component.PopupType) (ecs.Entity, bool) {
	if w == nil || msg == "" {
		return 0, false
	}
	style, ok := popupStyles[typ]
	if !ok {
		style = popupStyles[component.PopupSmall]
	}
	popup := &component.Popup{
		Message: msg,
		Type:    typ,
		Owner:   uint64(owner),
		Rise:    gween.New(0, style.rise, style.duration, ease.OutQuad),
	}
	if t, ok := ecs.Get(w, owner, component.TransformComponent.Kind()); ok {
		popup.X, popup.Y = t.X, t.Y
	}

	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.PopupComponent.Kind(), popup); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, false
	}
	return e, true
}

func (s *PopupSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	var done []ecs.Entity
	ecs.ForEach(w, component.PopupComponent.Kind(), func(e ecs.Entity, p *component.Popup) {
		if p.Rise == nil {
			done = append(done, e)
			return
		}
		offset, finished := p.Rise.Update(float32(common.FixedDelta))
		p.Offset = float64(offset)
		if t, ok := ecs.Get(w, ecs.Entity(p.Owner), component.TransformComponent.Kind()); ok {
			p.X, p.Y = t.X, t.Y
		}
		if finished {
			done = append(done, e)
		}
	})
	for _, e := range done {
		ecs.DestroyEntity(w, e)
	}
}

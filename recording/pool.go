package recording

import (
	"maps"
	"reflect"
	"slices"

	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/text"
)

// ResourcePool stores the faces and icons referenced by recorded commands.
//
// A resource added twice gets the same reference. Faces whose dynamic type
// is not comparable are stored once per Add.
//
// ResourcePool is not safe for concurrent use.
type ResourcePool struct {
	faces []text.Face
	icons []*resource.Icon

	faceRefs map[text.Face]FaceRef
	iconRefs map[*resource.Icon]IconRef
}

// NewResourcePool creates an empty resource pool.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		faces:    make([]text.Face, 0, 4),
		icons:    make([]*resource.Icon, 0, 4),
		faceRefs: make(map[text.Face]FaceRef),
		iconRefs: make(map[*resource.Icon]IconRef),
	}
}

// AddFace adds a face and returns its reference. A nil face yields
// InvalidRef.
func (p *ResourcePool) AddFace(face text.Face) FaceRef {
	if face == nil {
		return FaceRef(InvalidRef)
	}
	keyed := reflect.TypeOf(face).Comparable()
	if keyed {
		if ref, ok := p.faceRefs[face]; ok {
			return ref
		}
	}
	p.faces = append(p.faces, face)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	ref := FaceRef(uint32(len(p.faces) - 1))
	if keyed {
		p.faceRefs[face] = ref
	}
	return ref
}

// Face returns the face for ref, or nil if the reference is invalid.
func (p *ResourcePool) Face(ref FaceRef) text.Face {
	if int(ref) >= len(p.faces) {
		return nil
	}
	return p.faces[ref]
}

// FaceCount returns the number of faces in the pool.
func (p *ResourcePool) FaceCount() int {
	return len(p.faces)
}

// AddIcon adds an icon and returns its reference. A nil icon yields
// InvalidRef.
func (p *ResourcePool) AddIcon(icon *resource.Icon) IconRef {
	if icon == nil {
		return IconRef(InvalidRef)
	}
	if ref, ok := p.iconRefs[icon]; ok {
		return ref
	}
	p.icons = append(p.icons, icon)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	ref := IconRef(uint32(len(p.icons) - 1))
	p.iconRefs[icon] = ref
	return ref
}

// Icon returns the icon for ref, or nil if the reference is invalid.
func (p *ResourcePool) Icon(ref IconRef) *resource.Icon {
	if int(ref) >= len(p.icons) {
		return nil
	}
	return p.icons[ref]
}

// IconCount returns the number of icons in the pool.
func (p *ResourcePool) IconCount() int {
	return len(p.icons)
}

// Clear removes all resources from the pool.
func (p *ResourcePool) Clear() {
	p.faces = p.faces[:0]
	p.icons = p.icons[:0]
	clear(p.faceRefs)
	clear(p.iconRefs)
}

// Clone returns a copy of the pool. Faces and icons are shared.
func (p *ResourcePool) Clone() *ResourcePool {
	return &ResourcePool{
		faces:    slices.Clone(p.faces),
		icons:    slices.Clone(p.icons),
		faceRefs: maps.Clone(p.faceRefs),
		iconRefs: maps.Clone(p.iconRefs),
	}
}

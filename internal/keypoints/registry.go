// Package keypoints maps human-readable keypoint names onto the landmark
// arrays of a decoded pose frame and extracts their 2D coordinates.
package keypoints

import (
	"errors"
	"fmt"
	"strconv"
)

// Source identifies which landmark array of a frame a keypoint is read from.
type Source int

const (
	SourceBody Source = iota
	SourceFace
	SourceLeftHand
	SourceRightHand
)

func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceFace:
		return "face"
	case SourceLeftHand:
		return "left_hand"
	case SourceRightHand:
		return "right_hand"
	default:
		return "source(" + strconv.Itoa(int(s)) + ")"
	}
}

const (
	// BodyPointCount is the exact length of a Body25 array.
	BodyPointCount = 25
	// FacePointCount is the minimum length of a non-empty face array.
	FacePointCount = 70
	// HandPointCount is the number of landmark positions per hand.
	HandPointCount = 21
)

var ErrDuplicateKeypoint = errors.New("duplicate keypoint name")

// Location is the position of a named keypoint inside a frame.
type Location struct {
	Source Source
	Index  int
}

// Registry is an immutable name -> Location table.
type Registry struct {
	locations map[string]Location
	order     []string
}

// Table lists the names registered for each canonical index of one source.
// An index with no names is left unregistered.
type Table struct {
	Source  Source
	Aliases [][]string
}

// NewRegistry registers every alias of every table in order. Two
// registrations of the same name fail with ErrDuplicateKeypoint.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{locations: make(map[string]Location)}
	for _, t := range tables {
		for idx, names := range t.Aliases {
			for _, name := range names {
				if prev, ok := r.locations[name]; ok {
					return nil, fmt.Errorf("%w: %q registered for %s[%d] and %s[%d]",
						ErrDuplicateKeypoint, name, prev.Source, prev.Index, t.Source, idx)
				}
				r.locations[name] = Location{Source: t.Source, Index: idx}
				r.order = append(r.order, name)
			}
		}
	}
	return r, nil
}

// Lookup returns the location registered for name.
func (r *Registry) Lookup(name string) (Location, bool) {
	loc, ok := r.locations[name]
	return loc, ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// NamesFor returns the registered names of one source in registration order.
func (r *Registry) NamesFor(src Source) []string {
	var out []string
	for _, name := range r.order {
		if r.locations[name].Source == src {
			out = append(out, name)
		}
	}
	return out
}

// Len reports the number of registered names.
func (r *Registry) Len() int {
	return len(r.order)
}

// ValidateNames fails with ErrUnknownKeypoint on the first name that is not registered.
func (r *Registry) ValidateNames(names []string) error {
	for _, name := range names {
		if _, ok := r.locations[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKeypoint, name)
		}
	}
	return nil
}

// Default is the registry built from the Body25, face and hand tables.
var Default = mustRegistry(
	Table{Source: SourceBody, Aliases: single(BodyNames)},
	Table{Source: SourceFace, Aliases: faceAliases()},
	Table{Source: SourceLeftHand, Aliases: handAliases("leftHand")},
	Table{Source: SourceRightHand, Aliases: handAliases("rightHand")},
)

func mustRegistry(tables ...Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

func single(names []string) [][]string {
	out := make([][]string, len(names))
	for i, name := range names {
		out[i] = []string{name}
	}
	return out
}

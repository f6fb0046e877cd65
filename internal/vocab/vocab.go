// Package vocab maps strings to dense integer ids and back.
//
// A Vocab is fitted once over training sequences and is immutable
// afterwards. Reserved special tokens occupy the lowest ids, followed by
// corpus items ordered by descending frequency with ties broken by first
// occurrence. The mapping is a bijection over the fitted domain.
package vocab

import (
	"errors"
	"fmt"
	"sort"
)

// Unknown is the conventional out-of-vocabulary placeholder.
const Unknown = "<UNK>"

var (
	// ErrNotFitted is returned when a Vocab is used before Fit.
	ErrNotFitted = errors.New("vocab: not fitted")

	// ErrIDRange is returned by Decode for ids outside the fitted range.
	ErrIDRange = errors.New("vocab: id out of range")

	// ErrNoUnknown is returned by Encode when an unseen string is looked
	// up and the vocab carries no unknown placeholder.
	ErrNoUnknown = errors.New("vocab: unseen string and no unknown token configured")
)

// Vocab is a bidirectional string/id mapping.
type Vocab struct {
	specials []string
	ids      map[string]int32
	items    []string
	unkID    int32
	hasUnk   bool
	fitted   bool
}

// New creates an unfitted Vocab. Specials are assigned the lowest ids in
// the given order when Fit runs; include Unknown to enable out-of-
// vocabulary substitution.
func New(specials ...string) *Vocab {
	return &Vocab{specials: specials}
}

// NewWithUnknown creates a Vocab whose only special is the Unknown
// placeholder at id 0.
func NewWithUnknown() *Vocab {
	return New(Unknown)
}

// FromItems restores a fitted Vocab from an id-ordered item list, as
// produced by Items. Used when loading a saved model.
func FromItems(items []string) *Vocab {
	v := &Vocab{
		ids:   make(map[string]int32, len(items)),
		items: make([]string, len(items)),
	}
	copy(v.items, items)
	for i, item := range items {
		v.ids[item] = int32(i)
		if item == Unknown {
			v.unkID = int32(i)
			v.hasUnk = true
		}
	}
	v.fitted = true
	return v
}

// Fit builds the id mapping from the given sequences. Items are ordered
// by descending frequency, ties by first occurrence in the scan.
func (v *Vocab) Fit(sequences [][]string) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	pos := 0
	for _, seq := range sequences {
		for _, item := range seq {
			if _, ok := counts[item]; !ok {
				firstSeen[item] = pos
				order = append(order, item)
			}
			counts[item]++
			pos++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := counts[order[i]], counts[order[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	v.ids = make(map[string]int32, len(v.specials)+len(order))
	v.items = make([]string, 0, len(v.specials)+len(order))
	v.hasUnk = false

	add := func(item string) {
		if _, ok := v.ids[item]; ok {
			return
		}
		id := int32(len(v.items))
		v.ids[item] = id
		v.items = append(v.items, item)
		if item == Unknown {
			v.unkID = id
			v.hasUnk = true
		}
	}

	for _, s := range v.specials {
		add(s)
	}
	for _, item := range order {
		add(item)
	}
	v.fitted = true
}

// Len returns the number of distinct ids, specials included.
func (v *Vocab) Len() int {
	return len(v.items)
}

// ID returns the id for item, substituting the unknown id for unseen
// strings.
func (v *Vocab) ID(item string) (int32, error) {
	if !v.fitted {
		return 0, ErrNotFitted
	}
	if id, ok := v.ids[item]; ok {
		return id, nil
	}
	if !v.hasUnk {
		return 0, fmt.Errorf("%w: %q", ErrNoUnknown, item)
	}
	return v.unkID, nil
}

// Item returns the string for id.
func (v *Vocab) Item(id int32) (string, error) {
	if !v.fitted {
		return "", ErrNotFitted
	}
	if id < 0 || int(id) >= len(v.items) {
		return "", fmt.Errorf("%w: %d (vocab size %d)", ErrIDRange, id, len(v.items))
	}
	return v.items[id], nil
}

// Encode maps each sequence of strings to a sequence of ids.
func (v *Vocab) Encode(sequences [][]string) ([][]int32, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]int32, len(sequences))
	for i, seq := range sequences {
		ids := make([]int32, len(seq))
		for j, item := range seq {
			id, err := v.ID(item)
			if err != nil {
				return nil, err
			}
			ids[j] = id
		}
		out[i] = ids
	}
	return out, nil
}

// Decode maps each sequence of ids back to strings. Ids outside the
// fitted range yield ErrIDRange rather than a panic.
func (v *Vocab) Decode(sequences [][]int32) ([][]string, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}
	out := make([][]string, len(sequences))
	for i, seq := range sequences {
		items := make([]string, len(seq))
		for j, id := range seq {
			item, err := v.Item(id)
			if err != nil {
				return nil, err
			}
			items[j] = item
		}
		out[i] = items
	}
	return out, nil
}

// Items returns every fitted string in id order. The slice is a copy.
func (v *Vocab) Items() []string {
	out := make([]string, len(v.items))
	copy(out, v.items)
	return out
}

// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package proc

// slabReserve caps the up-front reservation of a Driver's arena; slots
// beyond it are allocated on demand.
const slabReserve = 64

// slab is an index-keyed arena. Values stay at a stable slot until removed;
// freed slots are recycled LIFO. Not safe for concurrent use.
type slab[T any] struct {
	slots []slabSlot[T]
	free  []int
	live  int
}

type slabSlot[T any] struct {
	value T
	used  bool
}

func newSlab[T any](capacity int) slab[T] {
	return slab[T]{
		slots: make([]slabSlot[T], 0, capacity),
		free:  make([]int, 0, capacity),
	}
}

// insert stores v and returns its slot id.
func (s *slab[T]) insert(v T) int {
	s.live++
	if n := len(s.free); n > 0 {
		id := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[id] = slabSlot[T]{value: v, used: true}
		return id
	}
	s.slots = append(s.slots, slabSlot[T]{value: v, used: true})
	return len(s.slots) - 1
}

// get returns a pointer to the value at id, or nil when the slot is free.
func (s *slab[T]) get(id int) *T {
	if id < 0 || id >= len(s.slots) || !s.slots[id].used {
		return nil
	}
	return &s.slots[id].value
}

// remove frees id and drops the stored value.
func (s *slab[T]) remove(id int) {
	if id < 0 || id >= len(s.slots) || !s.slots[id].used {
		return
	}
	s.slots[id] = slabSlot[T]{}
	s.free = append(s.free, id)
	s.live--
}

// cap returns the number of slot ids ever allocated; ids are in [0, cap).
func (s *slab[T]) cap() int {
	return len(s.slots)
}

func (s *slab[T]) len() int {
	return s.live
}

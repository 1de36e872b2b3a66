package video

import "sort"

// entry describes one access unit of the selected video substream as
// recorded during the opening scan. Timestamps are in stream time-base
// units, taken from the packet headers.
type entry struct {
	pts      int64
	dts      int64
	keyframe bool
}

// timetable is the presentation-order index of the stream: one entry per
// frame, sorted ascending by presentation timestamp. The position of an
// entry is the caller-visible frame index, stable for the lifetime of the
// Stream. It is built once by Open and never mutated afterwards.
type timetable []entry

// sortByPresentation reorders the collected entries from decode order to
// presentation order. Codecs with backward references emit access units
// whose decode order differs from their display order, so indexing by
// position is only meaningful after this step.
func (t timetable) sortByPresentation() {
	sort.Slice(t, func(i, j int) bool {
		return t[i].pts < t[j].pts
	})
}

func (t timetable) contains(index int) bool {
	return index >= 0 && index < len(t)
}

// nearbyKeyframe resolves the frame index of the keyframe that is offset
// keyframes away from index. Negative offsets count through keyframes
// strictly before index, newest first at -1; positive offsets count
// through keyframes at or after index. The comparisons are deliberately
// asymmetric: when index sits on a keyframe, offset 0 is the only way to
// address it and +1 is the following keyframe. The second return value is
// false when offset points outside the available keyframe range.
func (t timetable) nearbyKeyframe(index, offset int) (int, bool) {
	if offset == 0 {
		return index, true
	}

	if offset < 0 {
		var before []int
		for k, e := range t {
			if e.keyframe && k < index {
				before = append(before, k)
			}
		}

		pos := len(before) + offset
		if pos < 0 {
			return 0, false
		}

		return before[pos], true
	}

	var after []int
	for k, e := range t {
		if e.keyframe && k >= index {
			after = append(after, k)
		}
	}

	if offset >= len(after) {
		return 0, false
	}

	return after[offset], true
}

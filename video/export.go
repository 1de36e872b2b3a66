package video

// flipRows copies a packed pixel plane into a fresh buffer, reversing the
// row order and trimming each row to rowBytes. The converter stores its
// output bottom-to-top, so reading the rows back to front yields the
// conventional top-to-bottom layout; trimming drops whatever row-alignment
// padding the allocator added beyond the visible pixels.
func flipRows(plane []byte, stride, rowBytes, height int) []byte {
	buf := make([]byte, 0, rowBytes*height)

	for y := height - 1; y >= 0; y-- {
		row := plane[y*stride:]
		buf = append(buf, row[:rowBytes]...)
	}

	return buf
}

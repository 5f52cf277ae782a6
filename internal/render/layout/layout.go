package layout

import "image"

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// Rows returns the top y of n text rows lineHeight apart, the first at
// rect.Min.Y + topPx. topPx may be negative.
func Rows(rect image.Rectangle, topPx, lineHeight, n int) []int {
	rect = Normalize(rect)
	if n <= 0 {
		return nil
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = rect.Min.Y + topPx + i*lineHeight
	}
	return rows
}

// Row returns the top y of row index, counted the same way as Rows.
func Row(rect image.Rectangle, topPx, lineHeight, index int) int {
	return Normalize(rect).Min.Y + topPx + index*lineHeight
}

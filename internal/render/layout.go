package render

import (
	"image"

	"departureboard.app/internal/display"
)

const (
	headingText = "LEAVING IN"

	yOffset     = 4
	rowHeight   = 40
	labelX      = 12
	labelWidth  = 50
	labelHeight = 36
	labelTextX  = 14
	timeX       = 72
)

var headingOrigin = image.Pt(1, 0)

// rowTop is the first pixel row of departure row i. Row 0 sits one row
// below the heading.
func rowTop(i int) int {
	return yOffset + (i+1)*rowHeight
}

func rowRect(i int, width int16) image.Rectangle {
	return image.Rect(0, rowTop(i), int(width), rowTop(i)+rowHeight)
}

func labelRect(i int) image.Rectangle {
	return image.Rect(labelX, rowTop(i), labelX+labelWidth, rowTop(i)+labelHeight)
}

// textTop centres a line of style within the label box height.
func textTop(i int, style display.TextStyle) int {
	return rowTop(i) + (labelHeight-int(style.LineHeight()))/2
}

func timeCell(i int, width int16, style display.TextStyle) image.Rectangle {
	top := textTop(i, style)
	return image.Rect(timeX, top, int(width), top+int(style.LineHeight()))
}

// visibleRows is how many rows fit entirely on a surface of the given height.
func visibleRows(height int16) int {
	rows := (int(height) - yOffset) / rowHeight
	if rows < 1 {
		return 0
	}
	return rows - 1
}

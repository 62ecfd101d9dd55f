package export

// A4 page geometry in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	MarginMM     = 10.0
)

// Placement is where a captured image lands on the page, in millimetres.
// Height is the visible height; ScaledHeight is what the full image would need.
// When Clipped is set the bottom ScaledHeight-Height of the image is cut off.
type Placement struct {
	X, Y          float64
	Width, Height float64
	ScaledHeight  float64
	Clipped       bool
}

// PlaceImage fits an image of the given pixel size on one page: full printable
// width, height from the aspect ratio capped at the printable height, centered
// on both axes.
func PlaceImage(pxWidth, pxHeight int) Placement {
	printableW := PageWidthMM - 2*MarginMM
	printableH := PageHeightMM - 2*MarginMM

	p := Placement{Width: printableW}
	if pxWidth > 0 && pxHeight > 0 {
		p.ScaledHeight = float64(pxHeight) * printableW / float64(pxWidth)
	}
	p.Height = min(p.ScaledHeight, printableH)
	p.Clipped = p.ScaledHeight > printableH
	p.X = (PageWidthMM - p.Width) / 2
	p.Y = (PageHeightMM - p.Height) / 2
	return p
}

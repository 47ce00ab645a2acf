package decode

import (
	"image"
	"math"
	"time"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/optiscan/optiscan/pkg/metrics"
)

// Result is one decoded barcode. Bounds is the bounding box of the symbol
// in the coordinates of the image handed to Decode.
type Result struct {
	Text   string
	Format string
	Bounds image.Rectangle
}

// Decoder runs a fixed set of symbology readers over a frame region.
type Decoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// New builds a decoder covering QR, the common one-dimensional formats
// (EAN, UPC, Code 39/93/128, ITF) and Data Matrix.
func New() *Decoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	return &Decoder{
		readers: []gozxing.Reader{
			qrcode.NewQRCodeReader(),
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode128Reader(),
			oned.NewCode39Reader(),
			oned.NewCode93Reader(),
			oned.NewITFReader(),
			datamatrix.NewDataMatrixReader(),
		},
		hints: hints,
	}
}

// Decode tries every reader against the image and returns all hits. An
// image without any barcode returns an empty slice, not an error.
func (d *Decoder) Decode(img image.Image) ([]Result, error) {
	start := time.Now()
	defer func() {
		metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	}()
	metrics.DecodeAttempts.Inc()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, reader := range d.readers {
		res, err := reader.Decode(bmp, d.hints)
		reader.Reset()
		if err != nil {
			// NotFoundException and friends: this symbology is not
			// in the frame.
			continue
		}
		r := Result{
			Text:   res.GetText(),
			Format: res.GetBarcodeFormat().String(),
			Bounds: boundsOf(res.GetResultPoints(), img.Bounds()),
		}
		metrics.DecodeHits.WithLabelValues(r.Format).Inc()
		results = append(results, r)
	}
	return results, nil
}

func boundsOf(points []gozxing.ResultPoint, within image.Rectangle) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.GetX())
		minY = math.Min(minY, p.GetY())
		maxX = math.Max(maxX, p.GetX())
		maxY = math.Max(maxY, p.GetY())
	}
	return image.Rect(int(minX), int(minY), int(maxX)+1, int(maxY)+1).Intersect(within)
}

// Closest returns the result whose bounding box center is nearest to the
// center of region, the reticle the operator aimed with.
func Closest(results []Result, region image.Rectangle) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}
	cx := region.Min.X + region.Dx()/2
	cy := region.Min.Y + region.Dy()/2

	best := results[0]
	bestDist := math.MaxInt
	for _, r := range results {
		rx := r.Bounds.Min.X + r.Bounds.Dx()/2
		ry := r.Bounds.Min.Y + r.Bounds.Dy()/2
		dist := (rx-cx)*(rx-cx) + (ry-cy)*(ry-cy)
		if dist < bestDist {
			best = r
			bestDist = dist
		}
	}
	return best, true
}

package imaging

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var ErrEmptyFrame = errors.New("frame could not be decoded")

// Processor normalises raw device frames into stored JPEGs.
type Processor struct {
	quality int
}

func NewProcessor(quality int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	return &Processor{quality: quality}
}

// Normalize decodes a frame, mirrors it for front-facing cameras and re-encodes it as JPEG.
func (p *Processor) Normalize(frame []byte, mirror bool) ([]byte, error) {
	mat, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, ErrEmptyFrame
	}

	if mirror {
		if err := gocv.Flip(mat, &mat, 1); err != nil {
			return nil, fmt.Errorf("failed to mirror frame: %w", err)
		}
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{int(gocv.IMWriteJpegQuality), p.quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

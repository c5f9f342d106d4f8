package highlight

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// pageImage returns the image data and fpdf image type for a page scan,
// re-encoding formats fpdf cannot embed as PNG
func pageImage(data []byte) ([]byte, string, error) {
	format, err := detectImageType(data)
	if err != nil {
		return nil, "", err
	}
	switch format {
	case "PNG", "JPEG", "GIF":
		return data, format, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("failed to convert %s image: %w", format, err)
	}
	return buf.Bytes(), "PNG", nil
}

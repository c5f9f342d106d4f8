package highlight

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // decoders for detectImageType
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode/utf16"

	"github.com/sirupsen/logrus"
)

func unescapePDFString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

func decodeUTF16BE(b []byte) (string, error) {
	if len(b) < 2 {
		return "", fmt.Errorf("input too short for UTF-16BE")
	}
	if b[0] != 0xFE || b[1] != 0xFF {
		return "", fmt.Errorf("no BOM detected, cannot confirm UTF-16BE")
	}
	b = b[2:]
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return string(utf16.Decode(units)), nil
}

// detectImageType tries to figure out whether the data is PNG, JPEG, etc.
func detectImageType(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	return strings.ToUpper(format), nil
}

// getLogger returns the configured logger, defaulting to the logrus
// standard logger
func getLogger(cfg Config) logrus.FieldLogger {
	if cfg.Logger == nil {
		return logrus.StandardLogger()
	}
	return cfg.Logger
}

// dumpPDFStructure logs the first byteCount bytes of the PDF plus the
// context of the first /OCG reference at debug level
func dumpPDFStructure(pdfData []byte, byteCount int, log logrus.FieldLogger) {
	if byteCount > len(pdfData) {
		byteCount = len(pdfData)
	}
	log.WithField("bytes", byteCount).Debugf("PDF structure:\n%s", pdfData[:byteCount])

	ocgIndex := bytes.Index(pdfData, []byte("/OCG"))
	if ocgIndex >= 0 {
		start := max(ocgIndex-20, 0)
		end := min(ocgIndex+100, len(pdfData))
		log.WithField("offset", ocgIndex).Debugf("OCG context:\n%s", pdfData[start:end])
	}
}

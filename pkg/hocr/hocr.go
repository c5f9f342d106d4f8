// Package hocr parses hOCR, the HTML based format OCR engines use to
// report recognized text with its position on the scanned page.
//
// The model is flattened to what text comparison needs: pages hold lines
// and lines hold words. Areas and paragraphs are walked through but not
// kept, since lines are rebuilt from word geometry downstream anyway.
//
// Key Types:
//
// - Document: title, language, metadata and pages
// - Page: a page with class 'ocr_page', its box and scan resolution
// - Line: a line of text (ocr_line and the other line classes)
// - Word: a single word with class 'ocrx_word'
//
// Main Functions:
//
// - Parse: parses hOCR data into the model
// - ParseTitle: splits an hOCR title attribute into properties
// - Page.Spans: converts the words of a page into layout spans
package hocr

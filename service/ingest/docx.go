package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/errs"
)

// extractDocx reads the text of a .docx body. A docx is a zip archive whose
// word/document.xml carries runs of text in w:t elements, paragraphs in w:p.
func extractDocx(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", errs.Wrap(errs.KindValidation, "unreadable_docx",
			"DOCX could not be read", err)
	}

	var docXML io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", errs.Wrap(errs.KindValidation, "unreadable_docx",
					"DOCX could not be read", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", errs.Validation("unreadable_docx", "DOCX has no document body")
	}
	defer docXML.Close()

	return decodeDocumentXML(docXML)
}

func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var b strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errs.Wrap(errs.KindValidation, "unreadable_docx",
				"DOCX body is not valid XML", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}

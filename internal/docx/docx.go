// Package docx extracts paragraph text from .docx files.
//
// A .docx is a zip archive whose word/document.xml holds the body as
// WordprocessingML: paragraphs are w:p elements, text lives in w:t runs.
// Only the paragraph text stream is needed here, so the file is read with
// archive/zip and a streaming XML decoder instead of a full OOXML library.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrSourceNotFound reports a missing input document path.
	ErrSourceNotFound = errors.New("source document not found")
	// ErrDocumentUnreadable reports a structurally malformed document container.
	ErrDocumentUnreadable = errors.New("document unreadable")
)

const documentEntry = "word/document.xml"

// ExtractParagraphs returns the document's paragraph text in document order.
// Paragraphs keep their internal run text concatenated; empty paragraphs are
// preserved (the parser ignores blank lines itself).
func ExtractParagraphs(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, err
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	defer reader.Close()

	var document *zip.File
	for _, file := range reader.File {
		if file.Name == documentEntry {
			document = file
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrDocumentUnreadable, documentEntry)
	}

	content, err := document.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	defer content.Close()

	paragraphs, err := decodeParagraphs(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentUnreadable, err)
	}
	return paragraphs, nil
}

func decodeParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		paraDepth  int  // nesting level of w:p elements (tables nest paragraphs)
		inText     bool // inside a w:t run
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "p":
				if paraDepth == 0 {
					current.Reset()
				}
				paraDepth++
			case "t":
				inText = true
			case "tab":
				if paraDepth > 0 {
					current.WriteByte('\t')
				}
			case "br":
				if paraDepth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "p":
				if paraDepth > 0 {
					paraDepth--
					if paraDepth == 0 {
						paragraphs = append(paragraphs, current.String())
					}
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText && paraDepth > 0 {
				current.Write(element)
			}
		}
	}

	return paragraphs, nil
}

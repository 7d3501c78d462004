package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"alfredoptarigan/resume-analyzer/internal/models"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	formatPDF  = "pdf"
	formatDOCX = "docx"
)

type DocumentExtractor interface {
	Extract(content []byte, mimeType, extension string) (*models.ExtractedText, error)
	// ExtractFile extracts from the document's temp file and removes it,
	// whether or not extraction succeeded.
	ExtractFile(doc *models.UploadedDocument) (*models.ExtractedText, error)
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
	return &documentExtractor{}
}

func (e *documentExtractor) ExtractFile(doc *models.UploadedDocument) (*models.ExtractedText, error) {
	defer RemoveTempFile(doc.FilePath)

	content, err := os.ReadFile(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return e.Extract(content, doc.MimeType, doc.Extension)
}

func (e *documentExtractor) Extract(content []byte, mimeType, extension string) (*models.ExtractedText, error) {
	format, err := DetectFormat(mimeType, extension)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, ErrEmptyExtraction(format)
	}

	var (
		text  string
		pages int
	)
	switch format {
	case formatPDF:
		text, pages, err = extractPDF(content)
	case formatDOCX:
		text, err = extractDOCX(content)
	}
	if err != nil {
		log.Printf("❌ Failed to read %s: %v", strings.ToUpper(format), err)
		return nil, ErrCorruptFile(format, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyExtraction(format)
	}

	return &models.ExtractedText{
		Content:   text,
		Format:    format,
		PageCount: pages,
	}, nil
}

// DetectFormat decides between PDF and DOCX. The mime type is checked first
// and the extension backs it up, since browsers often send unreliable types.
func DetectFormat(mimeType, extension string) (string, error) {
	mt := normalizeMimeType(mimeType)
	ext := strings.ToLower(strings.TrimSpace(extension))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	switch {
	case mt == MimePDF || ext == ".pdf":
		return formatPDF, nil
	case mt == MimeDOCX || ext == ".docx":
		return formatDOCX, nil
	}

	received := mt
	if received == "" {
		received = ext
	}
	return "", ErrUnsupportedFormat(received)
}

func normalizeMimeType(mimeType string) string {
	mt := strings.TrimSpace(mimeType)
	if mt == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.Split(mt, ";")[0])
}

// extractPDF reads the text of every page. When the reader rejects the file,
// it is rewritten once by pdfcpu and read again.
func extractPDF(data []byte) (string, int, error) {
	text, pages, err := readPDFText(data)
	if err == nil {
		return text, pages, nil
	}

	repaired, repairErr := repairPDF(data)
	if repairErr != nil {
		return "", 0, err
	}
	log.Println("⚠️ PDF was rewritten by pdfcpu before extraction")
	return readPDFText(repaired)
}

func readPDFText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := reader.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Keep whatever the other pages give us.
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), totalPage, nil
}

func repairPDF(data []byte) (repaired []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("pdfcpu optimize: %w", err)
	}
	return out.Bytes(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}
	defer doc.Close()

	return docxPlainText(doc.Editable().GetContent())
}

// docxPlainText keeps the w:t runs of a WordprocessingML body, one line per
// paragraph. Tabs and breaks count only inside a w:r run; w:tab also defines
// tab stops in paragraph properties.
func docxPlainText(body string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(body))
	var buf strings.Builder
	inText := false
	runDepth := 0

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				runDepth++
			case "t":
				inText = runDepth > 0
			case "tab":
				if runDepth > 0 {
					buf.WriteString("\t")
				}
			case "br", "cr":
				if runDepth > 0 {
					buf.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				if runDepth > 0 {
					runDepth--
				}
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}

	return buf.String(), nil
}

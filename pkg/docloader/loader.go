package docloader

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"doc-qa-be/pkg/ragerr"
	"doc-qa-be/pkg/store"

	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unioffice/document"
)

// Result is the raw material handed to the chunker: extracted plain
// text plus file-level metadata.
type Result struct {
	Content   string
	Filename  string
	FileType  string
	FileSize  int64
	PageCount int
}

// Loader extracts plain text from uploaded files. Implementations must
// fail with a document-processing error on unreadable, corrupt or
// empty input.
type Loader interface {
	Load(filePath string) (*Result, error)
	DetectType(filename string) (string, error)
}

type fileLoader struct{}

// New returns the default loader supporting pdf, txt and docx files.
func New() Loader {
	return &fileLoader{}
}

func (l *fileLoader) DetectType(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case store.FileTypePDF, store.FileTypeTXT, store.FileTypeDOCX:
		return ext, nil
	}
	return "", ragerr.DocumentProcessing("unsupported file type: %q (expected pdf, txt or docx)", ext)
}

func (l *fileLoader) Load(filePath string) (*Result, error) {
	fileType, err := l.DetectType(filePath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "file not readable")
	}

	var content string
	pageCount := 0
	switch fileType {
	case store.FileTypeTXT:
		content, err = loadText(filePath)
	case store.FileTypePDF:
		content, pageCount, err = loadPDF(filePath)
	case store.FileTypeDOCX:
		content, err = loadDocx(filePath)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, ragerr.DocumentProcessing("no text could be extracted from %s", filepath.Base(filePath))
	}

	return &Result{
		Content:   content,
		Filename:  filepath.Base(filePath),
		FileType:  fileType,
		FileSize:  info.Size(),
		PageCount: pageCount,
	}, nil
}

func loadText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to read text file")
	}
	return string(data), nil
}

func loadPDF(filePath string) (string, int, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", 0, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to open pdf")
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", 0, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to extract pdf text")
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", 0, ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to read pdf text")
	}
	return buf.String(), reader.NumPage(), nil
}

func loadDocx(filePath string) (string, error) {
	doc, err := document.Open(filePath)
	if err != nil {
		return "", ragerr.Wrap(ragerr.KindDocumentProcessing, err, "failed to open docx")
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

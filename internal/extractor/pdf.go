package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"knowledge-ingest/internal/models"
)

// ExtractPDF concatenates the text layer of every page in page order.
// A PDF without a text layer (scanned pages) yields an empty string.
func ExtractPDF(data []byte) (text string, err error) {
	// the parser panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = extractionError(models.FormatPDF, fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError(models.FormatPDF, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		// missing page or a page without a content stream
		if page.V.IsNull() || page.V.Key("Contents").IsNull() {
			continue
		}
		content, err := pageText(page)
		if err != nil {
			return "", extractionError(models.FormatPDF, fmt.Errorf("page %d: %v", i, err))
		}
		sb.WriteString(content)
	}

	log.Debug().Int("pages", numPages).Int("chars", sb.Len()).Msg("Extracted pdf")
	return sanitize(sb.String()), nil
}

// pageText reads the text of one page. GetPlainText only handles a single
// content stream, so pages with an array of streams are interpreted stream by stream.
func pageText(page pdf.Page) (string, error) {
	contents := page.V.Key("Contents")
	if contents.Kind() != pdf.Array {
		return page.GetPlainText(nil)
	}

	fonts := make(map[string]pdf.Font)
	for _, name := range page.Fonts() {
		fonts[name] = page.Font(name)
	}

	var sb strings.Builder
	var enc pdf.TextEncoding = rawEncoding{}
	show := func(s string) {
		for _, ch := range enc.Decode(s) {
			sb.WriteRune(ch)
		}
	}

	for i := 0; i < contents.Len(); i++ {
		pdf.Interpret(contents.Index(i), func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for j := n - 1; j >= 0; j-- {
				args[j] = stk.Pop()
			}

			switch op {
			case "T*":
				show("\n")
			case "Tf":
				if len(args) != 2 {
					panic("bad Tf operator")
				}
				if font, ok := fonts[args[0].Name()]; ok {
					enc = font.Encoder()
				} else {
					enc = rawEncoding{}
				}
			case "Tj", "'", "\"":
				if len(args) == 0 {
					panic("bad " + op + " operator")
				}
				show(args[len(args)-1].RawString())
			case "TJ":
				if len(args) != 1 {
					panic("bad TJ operator")
				}
				for k := 0; k < args[0].Len(); k++ {
					if x := args[0].Index(k); x.Kind() == pdf.String {
						show(x.RawString())
					}
				}
			}
		})
	}
	return sb.String(), nil
}

// rawEncoding passes string bytes through when a font has no known encoding
type rawEncoding struct{}

func (rawEncoding) Decode(raw string) string { return raw }

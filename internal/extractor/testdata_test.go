package extractor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildPDF writes a minimal uncompressed PDF with one content stream per page
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	streams := make([][]string, len(pages))
	for i, p := range pages {
		streams[i] = []string{p}
	}
	return buildPDFStreams(t, streams...)
}

// buildPDFStreams writes one page per entry. A page with more than one stream
// gets a /Contents array.
func buildPDFStreams(t *testing.T, pages ...[]string) []byte {
	t.Helper()

	objects := []string{"", // object numbers start at 1
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled once the kids are known
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	kids := ""
	for _, streams := range pages {
		pageObj := len(objects)
		kids += fmt.Sprintf("%d 0 R ", pageObj)
		objects = append(objects, "")

		refs := make([]string, len(streams))
		for j, content := range streams {
			refs[j] = fmt.Sprintf("%d 0 R", len(objects))
			objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		}
		contents := strings.Join(refs, " ")
		if len(refs) != 1 {
			contents = "[ " + contents + " ]"
		}
		objects[pageObj] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %s >>", contents)
	}
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [ %s] /Count %d >>", kids, len(pages))

	numObjects := len(objects) - 1
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, numObjects+1)
	for i := 1; i <= numObjects; i++ {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i, objects[i])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", numObjects+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= numObjects; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", numObjects+1, xref)
	return buf.Bytes()
}

func textPage(s string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", s)
}

// buildDOCX zips the parts the docx reader requires
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()

	parts := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml":            `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildXLSX(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

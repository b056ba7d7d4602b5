package testsupport

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ArchiveFile is one entry in a fixture archive. Names ending in "/" become
// directory entries.
type ArchiveFile struct {
	Name string
	Body string
}

// EducationXML renders a minimal education record document for fixtures.
func EducationXML(orcid, name, university, role, startYear, endYear, city, region, country string) string {
	var b strings.Builder
	b.WriteString(`<education:education xmlns:education="http://www.orcid.org/ns/education" xmlns:common="http://www.orcid.org/ns/common">`)
	b.WriteString(`<common:source><common:source-orcid><common:path>`)
	b.WriteString(orcid)
	b.WriteString(`</common:path></common:source-orcid><common:source-name>`)
	b.WriteString(name)
	b.WriteString(`</common:source-name></common:source>`)
	b.WriteString(`<education:role-title>`)
	b.WriteString(role)
	b.WriteString(`</education:role-title>`)
	b.WriteString(`<common:start-date><common:year>`)
	b.WriteString(startYear)
	b.WriteString(`</common:year></common:start-date>`)
	b.WriteString(`<common:end-date><common:year>`)
	b.WriteString(endYear)
	b.WriteString(`</common:year></common:end-date>`)
	b.WriteString(`<education:organization><common:name>`)
	b.WriteString(university)
	b.WriteString(`</common:name><common:address><common:city>`)
	b.WriteString(city)
	b.WriteString(`</common:city><common:region>`)
	b.WriteString(region)
	b.WriteString(`</common:region><common:country>`)
	b.WriteString(country)
	b.WriteString(`</common:country></common:address></education:organization>`)
	b.WriteString(`</education:education>`)
	return b.String()
}

// BuildArchive writes a fixture tar archive at path containing files in the
// given order. The container format follows the path extension: .tar.gz or
// .tgz (gzip), .tar.zst (zstd), .tar (plain).
func BuildArchive(t testing.TB, path string, files []ArchiveFile) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer out.Close()

	var sink io.WriteCloser
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		sink = gzip.NewWriter(out)
	case strings.HasSuffix(lower, ".tar.zst"):
		enc, err := zstd.NewWriter(out)
		if err != nil {
			t.Fatalf("zstd writer for %s: %v", path, err)
		}
		sink = enc
	case strings.HasSuffix(lower, ".tar"):
		sink = nopWriteCloser{out}
	default:
		t.Fatalf("unsupported fixture archive extension: %s", path)
	}

	tw := tar.NewWriter(sink)
	modTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, file := range files {
		header := &tar.Header{
			Name:    file.Name,
			Mode:    0o644,
			Size:    int64(len(file.Body)),
			ModTime: modTime,
		}
		if strings.HasSuffix(file.Name, "/") {
			header.Typeflag = tar.TypeDir
			header.Mode = 0o755
			header.Size = 0
		}
		if err := tw.WriteHeader(header); err != nil {
			t.Fatalf("write header %s: %v", file.Name, err)
		}
		if header.Typeflag != tar.TypeDir {
			if _, err := tw.Write([]byte(file.Body)); err != nil {
				t.Fatalf("write body %s: %v", file.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar %s: %v", path, err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close compressor %s: %v", path, err)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

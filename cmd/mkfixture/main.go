// mkfixture writes a synthetic department billing export with the quirks
// real exports have: Vietnamese headers, mixed date layouts, formatted
// amounts, quoted fields and blank cells. With --check it instead parses an
// existing export and prints what the loader would see.
// Usage: go run ./cmd/mkfixture --out testdata/khoa.csv --rows 200 --encoding cp1258
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/gyeh/deptstats/internal/csvtext"
	"github.com/gyeh/deptstats/internal/ingest"
	"github.com/gyeh/deptstats/internal/model"
	"github.com/gyeh/deptstats/internal/report"
	"github.com/gyeh/deptstats/internal/source"
)

var header = []string{"Ngày", "Mã Khoa", "Tên dịch vụ", "Tên BS", "Mã ICD", "Đối tượng", "Loại điều trị", "Thành Tiền"}

var (
	services = []string{"Khám bệnh", "Xét nghiệm máu", "Siêu âm bụng", "Chụp X-quang", "Nội soi dạ dày", "Châm cứu"}
	doctors  = []string{"BS. Nguyễn Văn An", "BS. Trần Thị Bình", "BS. Lê Hoàng Cường", "BS. Phạm Thu Hà", "BS. Đỗ Minh Đức"}
	icds     = []string{"J00", "I10", "E11", "K29", "M54", "Z00"}
	types    = []string{"BHYT", "VIEN_PHI", "DICH_VU"}
	admits   = []string{"NGOAI_TRU", "NOI_TRU"}
)

func main() {
	out := flag.String("out", "testdata/khoa.csv", "output path")
	rows := flag.Int("rows", 200, "data rows to write")
	seed := flag.Uint64("seed", 1, "random seed")
	encoding := flag.String("encoding", "utf8", "output encoding: utf8 or cp1258")
	bom := flag.Bool("bom", false, "prefix a UTF-8 byte order mark")
	delim := flag.String("delim", ",", "field delimiter: , or ;")
	noTrailingNewline := flag.Bool("no-trailing-newline", false, "omit the final line terminator")
	check := flag.String("check", "", "parse this export and print stats instead of writing")
	flag.Parse()

	if *check != "" {
		if err := checkExport(*check); err != nil {
			fmt.Fprintf(os.Stderr, "check: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *delim != "," && *delim != ";" {
		fmt.Fprintln(os.Stderr, "--delim must be , or ;")
		os.Exit(1)
	}

	text := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), *rows, *delim)
	if *noTrailingNewline {
		text = strings.TrimSuffix(text, "\r\n")
	}

	var data []byte
	switch *encoding {
	case "utf8":
		data = []byte(text)
		if *bom {
			data = append([]byte{0xEF, 0xBB, 0xBF}, data...)
		}
	case "cp1258":
		var err error
		data, err = charmap.Windows1258.NewEncoder().Bytes([]byte(cp1258Form(text)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown encoding %q\n", *encoding)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d rows (%d bytes, %s) to %s\n", *rows, len(data), *encoding, *out)
}

// generate builds the export text. Rows end in CRLF as spreadsheet exports do.
func generate(rng *rand.Rand, n int, delim string) string {
	var b strings.Builder
	writeRow(&b, header, delim)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, rng.IntN(365))
		dept := model.AllDepartments[rng.IntN(len(model.AllDepartments))].Code

		row := []string{
			formatDate(rng, day),
			string(dept),
			pick(rng, services),
			pick(rng, doctors),
			pick(rng, icds),
			pick(rng, types),
			pick(rng, admits),
			formatAmount(rng, 10_000*(1+rng.IntN(500))),
		}
		// Blank cells exercise the defaults.
		if rng.IntN(20) == 0 {
			row[rng.IntN(len(row))] = ""
		}
		writeRow(&b, row, delim)
	}
	return b.String()
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func formatDate(rng *rand.Rand, d time.Time) string {
	switch rng.IntN(4) {
	case 0:
		return d.Format("2006-01-02")
	case 1:
		return d.Format("02/01/2006")
	case 2:
		return d.Format("2/1/2006")
	default:
		return d.Format("02.01.2006")
	}
}

func formatAmount(rng *rand.Rand, v int) string {
	plain := fmt.Sprintf("%d", v)
	switch rng.IntN(3) {
	case 0:
		return plain
	case 1:
		return plain + " đ"
	default:
		// Thousands separators force quoting when the delimiter is a comma.
		var b strings.Builder
		for i, r := range plain {
			if i > 0 && (len(plain)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(r)
		}
		return b.String()
	}
}

func writeRow(b *strings.Builder, fields []string, delim string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(delim)
		}
		if strings.ContainsAny(f, ",;\"\r\n") {
			f = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
		}
		b.WriteString(f)
	}
	b.WriteString("\r\n")
}

// cp1258Form rewrites s into the mix of precomposed letters and combining
// tone marks that Windows-1258 can encode: the base vowels â ê ô ă ơ ư stay
// precomposed, tone marks follow as combining characters.
func cp1258Form(s string) string {
	var b strings.Builder
	decomposed := []rune(norm.NFD.String(s))
	for i := 0; i < len(decomposed); {
		base := decomposed[i]
		i++
		var modifiers, tones []rune
		for i < len(decomposed) && unicode.Is(unicode.Mn, decomposed[i]) {
			switch m := decomposed[i]; m {
			case '\u0302', '\u0306', '\u031B': // circumflex, breve, horn
				modifiers = append(modifiers, m)
			default:
				tones = append(tones, m)
			}
			i++
		}
		b.WriteString(norm.NFC.String(string(append([]rune{base}, modifiers...))))
		b.WriteString(string(tones))
	}
	return b.String()
}

// checkExport parses path the way sheetload does and prints what it found.
func checkExport(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	txt := source.Decode(raw)

	rows := csvtext.Tokenize(txt)
	asm := &ingest.Assembler{Synonyms: model.DefaultSynonyms(), Defaults: model.StandardDefaults()}
	records, err := asm.Assemble(context.Background(), rows)
	if err != nil {
		return err
	}

	fmt.Printf("Bytes:   %d (utf8 input: %v)\n", len(raw), utf8.Valid(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})))
	fmt.Printf("Rows:    %d\n", len(rows))
	fmt.Printf("Records: %d\n", len(records))
	s := report.Summarize(records, nil)
	fmt.Printf("Revenue: %.0f\n", s.Revenue)
	for _, d := range s.Departments {
		if d.Records > 0 {
			fmt.Printf("  %-14s %5d records %14.0f\n", d.Code, d.Records, d.Revenue)
		}
	}
	return nil
}

// Package textmeta analyzes plain-text content: line and word counts plus
// natural-language detection over a bounded sample of the file.
package textmeta

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
	"github.com/vk/metascan/internal/handlers"
)

// Module implements handlers.Module for this package.
type Module struct{}

// sampleLimit bounds how much of a file feeds the language detector; the
// detector's accuracy plateaus well below this.
const sampleLimit = 64 * 1024

// The lingua detector is expensive to build, so it is shared process-wide
// and constructed on first use.
var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func languageDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(
				lingua.English,
				lingua.German,
				lingua.French,
				lingua.Spanish,
				lingua.Portuguese,
				lingua.Russian,
				lingua.Japanese,
				lingua.Chinese,
			).
			Build()
	})
	return detector
}

// AnalyzeText counts lines and words and reports whether the sample looks
// like valid UTF-8 text.
func AnalyzeText(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines, words, bytes int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	valid := true
	for scanner.Scan() {
		line := scanner.Text()
		lines++
		words += len(strings.Fields(line))
		bytes += len(line) + 1
		if valid && !utf8.ValidString(line) {
			valid = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"lines":      lines,
		"words":      words,
		"bytes":      bytes,
		"valid_utf8": valid,
	}, nil
}

// DetectLanguage guesses the natural language of the file's leading sample.
func DetectLanguage(ctx context.Context, path string, args map[string]any) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sample := make([]byte, sampleLimit)
	n, err := f.Read(sample)
	if err != nil && n == 0 {
		return nil, err
	}
	text := string(sample[:n])

	attrs := map[string]any{"sample_bytes": n}
	if lang, ok := languageDetector().DetectLanguageOf(text); ok {
		attrs["language"] = lang.String()
		attrs["iso639_1"] = lang.IsoCode639_1().String()
	} else {
		attrs["language"] = "unknown"
	}
	return attrs, nil
}

// Register wires this module's handlers into the process registry.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("AnalyzeText", AnalyzeText)
	h.Register("DetectLanguage", DetectLanguage)
}

// Package stopwords resolves the process-wide stop-word set at startup.
package stopwords

import (
	"context"
	"fmt"
	"os"

	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/RishiKendai/veritext/internal/repository"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// SetGetter looks up a named stop-word set.
type SetGetter interface {
	GetSet(ctx context.Context, name string) (*repository.StopwordSet, error)
}

// Source describes where stop words come from. The first configured source
// wins: named set, then file, then the built-in list.
type Source struct {
	SetName string
	Sets    SetGetter
	File    string
}

// fileFormat accepts either `words: [...]` or a bare YAML list.
type fileFormat struct {
	Words []string `yaml:"words"`
}

func Load(ctx context.Context, src Source) (plagiarism.Stopwords, error) {
	switch {
	case src.SetName != "":
		if src.Sets == nil {
			return plagiarism.Stopwords{}, fmt.Errorf("stop-word set %q requested without a set store", src.SetName)
		}
		set, err := src.Sets.GetSet(ctx, src.SetName)
		if err != nil {
			return plagiarism.Stopwords{}, fmt.Errorf("failed to load stop-word set: %w", err)
		}
		words := plagiarism.NewStopwords(set.Words...)
		log.Info().Str("set", set.Name).Int("words", words.Len()).Msg("Loaded stop-word set")
		return words, nil

	case src.File != "":
		words, err := LoadFile(src.File)
		if err != nil {
			return plagiarism.Stopwords{}, err
		}
		log.Info().Str("file", src.File).Int("words", words.Len()).Msg("Loaded stop-word file")
		return words, nil

	default:
		words := plagiarism.DefaultStopwords()
		log.Debug().Int("words", words.Len()).Msg("Using built-in stop words")
		return words, nil
	}
}

func LoadFile(path string) (plagiarism.Stopwords, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plagiarism.Stopwords{}, fmt.Errorf("failed to read stop-word file: %w", err)
	}

	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		var list []string
		if listErr := yaml.Unmarshal(data, &list); listErr != nil {
			return plagiarism.Stopwords{}, fmt.Errorf("failed to parse stop-word file: %w", err)
		}
		doc.Words = list
	}

	if len(doc.Words) == 0 {
		return plagiarism.Stopwords{}, fmt.Errorf("stop-word file %s contains no words", path)
	}

	return plagiarism.NewStopwords(doc.Words...), nil
}

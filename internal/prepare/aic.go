package prepare

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jukaradayi/abkhazia/internal/logging"
)

// Names of the corpus description files written to the output
// directory.
const (
	SegmentsFile = "segments"
	Utt2SpkFile  = "utt2spk"
	TextFile     = "text"
	LexiconFile  = "lexicon.txt"
)

// promptRe matches an AIC prompt line: utterance id (speaker, sentence
// type, index) followed by the transcription.
var promptRe = regexp.MustCompile(`^([fm0-9]+)_([ps])_(\S*)\s+(.*)$`)

// Preparator converts a revised Articulation Index Corpus distribution
// to the abkhazia corpus format.
type Preparator struct {
	// InputDir is the root of the AIC distribution.
	InputDir string

	// OutputDir receives segments, utt2spk, text and lexicon.txt.
	OutputDir string

	// CMUDict is the path to the CMU pronouncing dictionary.
	CMUDict string
}

// Prepare writes the four corpus description files.
func (p *Preparator) Prepare() error {
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	utts, err := p.listUtterances()
	if err != nil {
		return err
	}
	if len(utts) == 0 {
		return fmt.Errorf("no flac file found in %s", p.InputDir)
	}

	if err := p.writeSegments(utts); err != nil {
		return err
	}
	if err := p.writeUtt2Spk(utts); err != nil {
		return err
	}
	if err := p.writeText(); err != nil {
		return err
	}
	return p.writeLexicon()
}

// listUtterances walks the corpus for flac files and returns the
// utterance ids, sorted.
func (p *Preparator) listUtterances() ([]string, error) {
	var utts []string
	err := filepath.WalkDir(p.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".flac") {
			utts = append(utts, strings.TrimSuffix(d.Name(), ".flac"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audio files: %w", err)
	}
	sort.Strings(utts)
	return utts, nil
}

func (p *Preparator) writeSegments(utts []string) error {
	var b strings.Builder
	for _, utt := range utts {
		fmt.Fprintf(&b, "%s %s.wav\n", utt, utt)
	}
	logging.Debug("writing segments", "utterances", len(utts))
	return os.WriteFile(filepath.Join(p.OutputDir, SegmentsFile), []byte(b.String()), 0644)
}

func (p *Preparator) writeUtt2Spk(utts []string) error {
	var b strings.Builder
	for _, utt := range utts {
		speaker, _, _ := strings.Cut(utt, "_")
		fmt.Fprintf(&b, "%s %s\n", utt, speaker)
	}
	return os.WriteFile(filepath.Join(p.OutputDir, Utt2SpkFile), []byte(b.String()), 0644)
}

// writeText concatenates the normal and weird sentence prompts into a
// single transcription file.
func (p *Preparator) writeText() error {
	var b strings.Builder
	for _, name := range []string{"normal.txt", "weird.txt"} {
		data, err := os.ReadFile(filepath.Join(p.InputDir, "data", "text", name))
		if err != nil {
			return fmt.Errorf("failed to read transcriptions: %w", err)
		}
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	return os.WriteFile(filepath.Join(p.OutputDir, TextFile), []byte(b.String()), 0644)
}

// writeLexicon resolves the corpus vocabulary through the CMU
// dictionary, converting pronunciations to AIC symbols. Out of
// vocabulary entries are the corpus "sounds" written as colon-joined
// phone sequences; those seen only once are discarded as typos.
func (p *Preparator) writeLexicon() error {
	dictFile, err := os.Open(p.CMUDict)
	if err != nil {
		return fmt.Errorf("failed to open CMU dictionary: %w", err)
	}
	defer dictFile.Close()

	dict, err := ParseCMUDict(dictFile)
	if err != nil {
		return fmt.Errorf("failed to parse CMU dictionary: %w", err)
	}

	freqs, err := p.wordFrequencies()
	if err != nil {
		return err
	}

	words := make([]string, 0, len(freqs))
	for w := range freqs {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freqs[words[i]] != freqs[words[j]] {
			return freqs[words[i]] > freqs[words[j]]
		}
		return words[i] < words[j]
	})

	var b strings.Builder
	for _, word := range words {
		if phones, ok := dict[word]; ok {
			fmt.Fprintf(&b, "%s %s\n", strings.ToLower(word), CMUToAIC(phones))
			continue
		}
		if freqs[word] < 2 {
			logging.Debug("discarding out of vocabulary word", "word", word)
			continue
		}
		sound := strings.ToLower(word)
		fmt.Fprintf(&b, "%s %s\n", sound, strings.Join(strings.Split(sound, ":"), " "))
	}

	return os.WriteFile(filepath.Join(p.OutputDir, LexiconFile), []byte(b.String()), 0644)
}

// wordFrequencies counts word occurrences in the prompt
// transcriptions, uppercased for the dictionary lookup.
func (p *Preparator) wordFrequencies() (map[string]int, error) {
	data, err := os.ReadFile(filepath.Join(p.OutputDir, TextFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TextFile, err)
	}

	freqs := make(map[string]int)
	for _, line := range strings.Split(string(data), "\n") {
		m := promptRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, word := range strings.Fields(strings.ToUpper(m[4])) {
			freqs[word]++
		}
	}
	return freqs, nil
}

// Package prepare converts raw speech corpora to the abkhazia corpus
// format. Only the revised Articulation Index Corpus is supported.
package prepare

import (
	"bufio"
	"io"
	"strings"
)

// ParseCMUDict reads the CMU pronouncing dictionary: one entry per
// line, word and phone string separated by two spaces. Stress digits
// are stripped and alternate pronunciations (entries like "WORD(2)")
// are dropped.
func ParseCMUDict(r io.Reader) (map[string]string, error) {
	dict := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ";;;") {
			continue
		}

		word, phones, ok := strings.Cut(line, "  ")
		if !ok {
			continue
		}
		if strings.Contains(word, "(") {
			continue
		}

		phones = strings.NewReplacer("0", "", "1", "", "2", "").Replace(phones)
		dict[word] = strings.TrimSpace(phones)
	}

	return dict, scanner.Err()
}

// cmuToAIC maps CMU phone symbols to the symbols used in the AIC
// transcriptions.
var cmuToAIC = map[string]string{
	"AA": "a", "AE": "xq", "AH": "xa", "AO": "c", "AW": "xw",
	"AY": "xy", "B": "b", "CH": "xc", "D": "d", "DH": "xd",
	"EH": "xe", "ER": "xr", "EY": "e", "F": "f", "G": "g",
	"HH": "h", "IH": "xi", "IY": "i", "JH": "xj", "K": "k",
	"L": "l", "M": "m", "N": "n", "NG": "xg", "OW": "o",
	"OY": "xo", "P": "p", "R": "r", "S": "s", "SH": "xs",
	"T": "t", "TH": "xt", "UH": "xu", "UW": "u", "V": "v",
	"W": "w", "Y": "y", "Z": "z", "ZH": "xz",
}

// CMUToAIC converts a space-separated CMU phone string to AIC symbols.
// Unknown symbols pass through lowercased.
func CMUToAIC(phones string) string {
	fields := strings.Fields(phones)
	for i, f := range fields {
		if aic, ok := cmuToAIC[f]; ok {
			fields[i] = aic
		} else {
			fields[i] = strings.ToLower(f)
		}
	}
	return strings.Join(fields, " ")
}

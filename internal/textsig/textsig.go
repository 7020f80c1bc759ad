// Package textsig extracts sentiment and keyword signals from free-text
// observation columns. Analysis is fixed-heuristic by design: a Spanish
// polarity lexicon and frequency-ranked keywords after stop-word filtering.
// Each observations column yields one independent Signal.
package textsig

import (
	"sort"
	"strings"
	"unicode"

	"github.com/afelipfo/informes-med/internal/classify"
	"github.com/afelipfo/informes-med/internal/dataset"
)

// DefaultTopKeywords is the number of ranked keywords kept per column.
const DefaultTopKeywords = 5

// Keyword is one extracted term with its occurrence count.
type Keyword struct {
	Word  string `yaml:"word" json:"word"`
	Count int    `yaml:"count" json:"count"`
}

// Signal is the aggregate text analysis of one observations column.
// A column with no usable text yields a neutral-polarity Signal with an
// empty keyword list.
type Signal struct {
	Column   string    `yaml:"column" json:"column"`
	Polarity float64   `yaml:"polarity" json:"polarity"`
	Keywords []Keyword `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// positiveWords and negativeWords form the fixed Spanish polarity lexicon
// for field-operation notes.
var positiveWords = map[string]struct{}{
	"bueno": {}, "buena": {}, "bien": {}, "excelente": {}, "correcto": {},
	"correcta": {}, "terminada": {}, "terminado": {}, "finalizada": {},
	"finalizado": {}, "completa": {}, "completo": {}, "completado": {},
	"exitosa": {}, "exitoso": {}, "avance": {}, "mejora": {}, "optimo": {},
	"óptimo": {}, "satisfactorio": {}, "satisfactoria": {}, "estable": {},
}

var negativeWords = map[string]struct{}{
	"daño": {}, "daños": {}, "falla": {}, "fallas": {}, "retraso": {},
	"retrasos": {}, "problema": {}, "problemas": {}, "pendiente": {},
	"pendientes": {}, "suspendida": {}, "suspendido": {}, "mal": {},
	"mala": {}, "malo": {}, "grieta": {}, "grietas": {}, "fuga": {},
	"fugas": {}, "riesgo": {}, "urgente": {}, "deterioro": {},
	"incompleta": {}, "incompleto": {}, "hundimiento": {}, "derrumbe": {},
}

// stopWords are common Spanish function words excluded from keywords.
var stopWords = map[string]struct{}{
	"para": {}, "con": {}, "las": {}, "los": {}, "una": {}, "uno": {},
	"del": {}, "que": {}, "esta": {}, "este": {}, "esto": {}, "por": {},
	"mas": {}, "más": {}, "muy": {}, "fue": {}, "son": {}, "como": {},
	"sin": {}, "sobre": {}, "entre": {}, "hasta": {}, "desde": {},
	"donde": {}, "cuando": {}, "pero": {}, "porque": {}, "tiene": {},
	"tienen": {}, "hay": {}, "ser": {}, "estar": {}, "hacia": {},
	"durante": {}, "segun": {}, "según": {}, "cada": {}, "todo": {},
	"toda": {}, "todos": {}, "todas": {},
}

// minKeywordLength filters out short tokens that carry little meaning.
const minKeywordLength = 4

// Extract analyzes every observations column of the classified dataset and
// returns one Signal per column, in dataset column order.
func Extract(ds *dataset.Dataset, cls *classify.Classification, topK int) []Signal {
	if topK <= 0 {
		topK = DefaultTopKeywords
	}

	var signals []Signal
	for _, col := range cls.ColumnsFor(classify.Observations) {
		signals = append(signals, extractColumn(ds, col, topK))
	}
	return signals
}

func extractColumn(ds *dataset.Dataset, col string, topK int) Signal {
	var b strings.Builder
	for _, v := range ds.Column(col) {
		if s, ok := v.Text(); ok {
			b.WriteString(s)
			b.WriteByte(' ')
		}
	}

	tokens := tokenize(b.String())
	return Signal{
		Column:   col,
		Polarity: polarity(tokens),
		Keywords: topKeywords(tokens, topK),
	}
}

// tokenize lowercases the text and splits it on non-letter runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// polarity scores tokens against the lexicon. The result is bounded in
// [-1, 1]: (positives - negatives) / (positives + negatives), or zero when
// no lexicon word appears.
func polarity(tokens []string) float64 {
	pos, neg := 0, 0
	for _, t := range tokens {
		if _, ok := positiveWords[t]; ok {
			pos++
		}
		if _, ok := negativeWords[t]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}

// topKeywords ranks meaningful tokens by frequency descending, breaking
// ties alphabetically for determinism.
func topKeywords(tokens []string, k int) []Keyword {
	counts := make(map[string]int)
	for _, t := range tokens {
		if len([]rune(t)) < minKeywordLength {
			continue
		}
		if _, ok := stopWords[t]; ok {
			continue
		}
		counts[t]++
	}
	if len(counts) == 0 {
		return nil
	}

	ranked := make([]Keyword, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, Keyword{Word: w, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Word < ranked[j].Word
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

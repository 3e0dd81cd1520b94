// Package cf inspects CF conventions on an opened dataset: it partitions
// variables, detects the feature type and extracts the time range.
package cf

import (
	"regexp"

	"github.com/coastwatch-labs/catalog/internal/cdm"
)

// ParameterPrefix is prepended to standard names under a CF vocabulary.
const ParameterPrefix = "http://mmisw.org/ont/cf/parameter/"

const MsgNoVocabulary = "Could not find a standard name vocabulary.  No global attribute named 'standard_name_vocabulary'.  Variable list may be incorrect or contain non-measured quantities."

var vocabularyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^CF-`),
	regexp.MustCompile(`^http://www\.cgd\.ucar\.edu/cms/eaton/cf-metadata/standard_name\.html`),
}

// Classification is the partition of a dataset's variables.
type Classification struct {
	Axis cdm.AxisHints

	// Standard and NonStandard hold variable names in declaration order.
	Standard    []string
	NonStandard []string

	// standard_name per entry of Standard
	StandardNames map[string]string

	// Prefix is empty when no known vocabulary is declared.
	Prefix   string
	Messages []string
}

// Candidates returns standard variables followed by non-standard ones.
func (c Classification) Candidates() []string {
	out := make([]string, 0, len(c.Standard)+len(c.NonStandard))
	out = append(out, c.Standard...)
	return append(out, c.NonStandard...)
}

// VariableNames is the catalog's variable list: non-standard names then
// standard ones, the latter as vocabulary URIs when a prefix is known.
func (c Classification) VariableNames() []string {
	out := make([]string, 0, len(c.Standard)+len(c.NonStandard))
	out = append(out, c.NonStandard...)
	for _, name := range c.Standard {
		if c.Prefix == "" {
			out = append(out, name)
			continue
		}
		out = append(out, c.Prefix+c.StandardNames[name])
	}
	return out
}

// Classify partitions variables into axis, standard and non-standard sets.
func Classify(ds cdm.Dataset) Classification {
	vars := ds.Variables()
	c := Classification{
		Axis:          AxisVariables(vars),
		StandardNames: make(map[string]string),
	}

	standard := make(map[string]struct{})
	for _, v := range vars {
		stdName, ok := v.Attr("standard_name")
		if !ok || v.Rank() < 1 {
			continue
		}
		if _, isAxis := axisStandardNames[stdName.String()]; isAxis {
			continue
		}
		if _, seen := standard[v.Name]; seen {
			continue
		}
		standard[v.Name] = struct{}{}
		c.Standard = append(c.Standard, v.Name)
		c.StandardNames[v.Name] = stdName.String()
	}

	seen := make(map[string]struct{})
	for _, v := range vars {
		if v.Rank() < 1 || v.Name == c.Axis.XName || v.Name == c.Axis.YName {
			continue
		}
		if _, ok := standard[v.Name]; ok {
			continue
		}
		if _, ok := excludedNames[v.Name]; ok {
			continue
		}
		if _, ok := seen[v.Name]; ok {
			continue
		}
		seen[v.Name] = struct{}{}
		c.NonStandard = append(c.NonStandard, v.Name)
	}

	c.Prefix = VocabularyPrefix(ds.GlobalAttributes())
	if c.Prefix == "" {
		c.Messages = append(c.Messages, MsgNoVocabulary)
	}

	return c
}

// AxisVariables finds x/y variables from `axis` or `_CoordinateAxisType`.
// A variable carrying `axis` is never inspected for `_CoordinateAxisType`.
// Later declarations win.
func AxisVariables(vars []*cdm.Variable) cdm.AxisHints {
	var hints cdm.AxisHints
	for _, v := range vars {
		if axis, ok := v.Attr("axis"); ok {
			switch axis.String() {
			case "X":
				hints.XName = v.Name
			case "Y":
				hints.YName = v.Name
			}
			continue
		}
		if axisType, ok := v.Attr("_CoordinateAxisType"); ok {
			switch axisType.String() {
			case "Lon":
				hints.XName = v.Name
			case "Lat":
				hints.YName = v.Name
			}
		}
	}
	return hints
}

// VocabularyPrefix returns ParameterPrefix when standard_name_vocabulary
// names a CF vocabulary, "" otherwise.
func VocabularyPrefix(globals cdm.Attributes) string {
	vocab, ok := globals.Lookup("standard_name_vocabulary")
	if !ok {
		return ""
	}
	for _, re := range vocabularyPatterns {
		if re.MatchString(vocab.String()) {
			return ParameterPrefix
		}
	}
	return ""
}

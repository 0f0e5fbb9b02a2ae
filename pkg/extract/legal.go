package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

// Legal documents share a small structural vocabulary
// (ARTICLE/SECTION/TITLE/CHAPTER), so hand-written regexes outperform
// generic heuristics for this corpus.
var (
	articleRe          = regexp.MustCompile(`ARTICLE\s+([IVX]+)[—\- ]+([A-Z][A-Z ]*)`)
	constitutionSecRe  = regexp.MustCompile(`(?:SECTION|SEC\.?)\s+(\d+)\.`)
	ordinanceSectionRe = regexp.MustCompile(`Section\s+(\d+)[.: ]+([A-Za-z][A-Za-z ]*)`)
	titleRe            = regexp.MustCompile(`TITLE\s+([IVXLC\d]+)[—\-: ]+([A-Z][A-Z ]*)`)
	chapterRe          = regexp.MustCompile(`CHAPTER\s+([IVXLC\d]+)[—\-,: ]+([A-Z][A-Z ]*)`)
	offenseRe          = regexp.MustCompile(`(?i)(?:guilty of|commits?) (?:the offense of |an offense of )?([A-Za-z\s]+?)(?:\s+if|\s+when|\s+shall)`)
	definitionRe       = regexp.MustCompile(`"([A-Za-z\s]+)"\s+(?:means|shall mean|is defined as)\s+([^.]+)`)
)

// keyEntity is a well-known legal authority linked with a "references"
// edge whenever it appears anywhere in the document.
type keyEntity struct {
	category    string
	description string
}

var keyEntities = map[string]keyEntity{
	"Tribal Council":  {"authority", "Governing body of the tribe"},
	"Tribal Court":    {"authority", "Judicial body of the tribe"},
	"Tribal Chairman": {"authority", "Elected leader"},
	"Chief Judge":     {"authority", "Head of court system"},
}

// LegalExtractor extracts entities from legal documents: codes,
// ordinances and constitutions.
type LegalExtractor struct {
	graph  *graph.Graph
	logger *logrus.Logger
}

// NewLegal creates a legal document extractor writing into g.
func NewLegal(g *graph.Graph) *LegalExtractor {
	return &LegalExtractor{graph: g, logger: newLogger()}
}

// Supports reports true for plain-text file types.
func (e *LegalExtractor) Supports(path string) bool {
	return hasExtension(path, legalExtensions)
}

// Extract classifies the document as a constitution, ordinance or code
// and runs the matching regex families over the full text.
func (e *LegalExtractor) Extract(ctx context.Context, path string) (*graph.Graph, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractText(text, fileStem(path), filepath.Base(path)), nil
}

// ExtractText runs legal extraction over already-loaded text. The PDF
// extractor delegates here after pulling page text out of a document.
func (e *LegalExtractor) ExtractText(text, sourceName, fileName string) *graph.Graph {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("legal"))
	defer timer.ObserveDuration()

	docType := classifyLegalDocument(sourceName, text)
	docID := e.graph.AddNode(sourceName, sourceName, docType, "Legal document: "+fileName, fileName)

	e.logger.WithFields(logrus.Fields{
		"source":   fileName,
		"doc_type": docType,
	}).Info("Extracting legal document")

	switch docType {
	case "constitution":
		e.extractConstitution(text, docID, fileName)
	case "ordinance":
		e.extractOrdinance(text, docID, fileName)
	default:
		e.extractCode(text, docID, fileName)
	}

	e.extractKeyEntities(text, docID)
	return e.graph
}

// classifyLegalDocument scans the filename and the first ~2000
// characters for type keywords. Anything that is neither a
// constitution nor an ordinance is treated as a code.
func classifyLegalDocument(name, text string) string {
	nameLower := strings.ToLower(name)
	head := text
	if len(head) > 2000 {
		head = head[:2000]
	}
	headLower := strings.ToLower(head)

	switch {
	case strings.Contains(nameLower, "constitution") || strings.Contains(headLower, "constitution"):
		return "constitution"
	case strings.Contains(nameLower, "ordinance"):
		return "ordinance"
	default:
		return "code"
	}
}

func (e *LegalExtractor) extractConstitution(text, docID, source string) {
	for _, m := range articleRe.FindAllStringSubmatch(text, -1) {
		num := m[1]
		title := titleCase(strings.TrimSpace(m[2]))
		articleID := e.graph.AddNode(
			"Article "+num,
			"Article "+num+" - "+title,
			"article",
			title,
			source,
		)
		e.graph.AddEdge(docID, articleID, "contains")
		entitiesExtracted.WithLabelValues("article").Inc()
	}

	for _, m := range constitutionSecRe.FindAllStringSubmatch(text, -1) {
		sectionID := e.graph.AddNode("Section "+m[1], "Section "+m[1], "section", "", source)
		e.graph.AddEdge(docID, sectionID, "contains")
		entitiesExtracted.WithLabelValues("section").Inc()
	}
}

func (e *LegalExtractor) extractOrdinance(text, docID, source string) {
	for _, m := range ordinanceSectionRe.FindAllStringSubmatch(text, -1) {
		num := m[1]
		title := truncateRunes(strings.TrimSpace(m[2]), 50)
		sectionID := e.graph.AddNode(
			source+" Sec "+num,
			"Section "+num+" - "+title,
			"section",
			title,
			source,
		)
		e.graph.AddEdge(docID, sectionID, "contains")
		entitiesExtracted.WithLabelValues("section").Inc()
	}
}

func (e *LegalExtractor) extractCode(text, docID, source string) {
	for _, m := range titleRe.FindAllStringSubmatch(text, -1) {
		name := truncateRunes(titleCase(strings.TrimSpace(m[2])), 40)
		label := "Title " + m[1] + " - " + name
		titleID := e.graph.AddNode(label, label, "title", name, source)
		e.graph.AddEdge(docID, titleID, "contains")
		entitiesExtracted.WithLabelValues("title").Inc()
	}

	for _, m := range chapterRe.FindAllStringSubmatch(text, -1) {
		name := truncateRunes(titleCase(strings.TrimSpace(m[2])), 40)
		label := "Chapter " + m[1] + " - " + name
		chapterID := e.graph.AddNode(label, label, "chapter", name, source)
		e.graph.AddEdge(docID, chapterID, "contains")
		entitiesExtracted.WithLabelValues("chapter").Inc()
	}

	for _, m := range offenseRe.FindAllStringSubmatch(text, -1) {
		offense := titleCase(strings.TrimSpace(m[1]))
		if n := len(offense); n <= 5 || n >= 50 {
			continue
		}
		offenseID := e.graph.AddNode(offense, offense, "offense", "Offense defined in "+source, source)
		e.graph.AddEdge(docID, offenseID, "defines")
		entitiesExtracted.WithLabelValues("offense").Inc()
	}

	for _, m := range definitionRe.FindAllStringSubmatch(text, -1) {
		term := titleCase(strings.TrimSpace(m[1]))
		if n := len(term); n <= 2 || n >= 40 {
			continue
		}
		definition := truncateRunes(strings.TrimSpace(m[2]), 100)
		defID := e.graph.AddNode(term, term, "definition", definition, source)
		e.graph.AddEdge(docID, defID, "defines")
		entitiesExtracted.WithLabelValues("definition").Inc()
	}
}

func (e *LegalExtractor) extractKeyEntities(text, docID string) {
	textLower := strings.ToLower(text)
	for name, info := range keyEntities {
		if !strings.Contains(textLower, strings.ToLower(name)) {
			continue
		}
		entityID := e.graph.AddNode(name, name, info.category, info.description, "")
		e.graph.AddEdge(docID, entityID, "references")
		entitiesExtracted.WithLabelValues(info.category).Inc()
	}
}

// titleCase lowercases the input and uppercases the first letter of
// each word.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, limit int) string {
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}

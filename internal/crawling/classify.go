package crawling

import (
	"net/url"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonathan/exercise-tracker/internal/db"
)

// OralChapter is the chapter name given to every oral-exam sheet.
const OralChapter = "Oraux"

// Classification is the catalogue placement derived from a listing page URL.
type Classification struct {
	Level    string
	Category string
	Chapter  string
}

var lowerFrench = cases.Lower(language.French)

// Classify derives level, category and chapter from the listing page a document was found on.
// Matching ignores case, percent-encoding and accents ("spé", "sp%C3%A9" and "spe" are equal).
func Classify(listingURL string) Classification {
	decoded := listingURL
	if u, err := url.Parse(listingURL); err == nil {
		decoded = u.Path
	}
	decoded = lowerFrench.String(decoded)
	folded := foldAccents(decoded)

	c := Classification{
		Level:    classifyLevel(folded),
		Category: classifyCategory(folded),
	}

	if c.Level == db.LevelOral {
		c.Chapter = OralChapter
		return c
	}
	c.Chapter = capitalize(path.Base(strings.TrimSuffix(decoded, "/")))
	if c.Chapter == "." || c.Chapter == "/" {
		c.Chapter = c.Category
	}
	return c
}

func classifyLevel(folded string) string {
	switch {
	case strings.Contains(folded, "exercices-sup"):
		return db.LevelSup
	case strings.Contains(folded, "exercices-spe"):
		return db.LevelSpe
	case strings.Contains(folded, "exercices-oraux"):
		return db.LevelOral
	default:
		return db.LevelOther
	}
}

func classifyCategory(folded string) string {
	switch {
	case strings.Contains(folded, "algebre"):
		return db.CategoryAlgebra
	case strings.Contains(folded, "analyse"):
		return db.CategoryAnalysis
	case strings.Contains(folded, "proba"):
		return db.CategoryProba
	default:
		return db.CategoryOther
	}
}

// foldAccents strips combining marks after canonical decomposition ("é" becomes "e").
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	s = lowerFrench.String(s)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// CleanTitle turns a link label such as "td-reduction_endomorphismes.pdf" into
// "Td reduction endomorphismes". fallbackURL supplies the file name when the label is empty.
func CleanTitle(label, fallbackURL string) string {
	title := strings.TrimSpace(label)
	if title == "" && fallbackURL != "" {
		if u, err := url.Parse(fallbackURL); err == nil {
			title = path.Base(u.Path)
		}
	}

	title = strings.TrimSuffix(title, ".pdf")
	title = strings.TrimSuffix(title, ".PDF")
	title = strings.NewReplacer("-", " ", "_", " ").Replace(title)
	title = strings.Join(strings.Fields(title), " ")
	return capitalize(title)
}

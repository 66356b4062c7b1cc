package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
)

// osisBookNames maps OSIS book identifiers (the first segment of an
// osisID like "Gen.1.1") to canonical English book names.
var osisBookNames = map[string]string{
	"Gen": "Genesis", "Exod": "Exodus", "Lev": "Leviticus", "Num": "Numbers",
	"Deut": "Deuteronomy", "Josh": "Joshua", "Judg": "Judges", "Ruth": "Ruth",
	"1Sam": "1 Samuel", "2Sam": "2 Samuel", "1Kgs": "1 Kings", "2Kgs": "2 Kings",
	"1Chr": "1 Chronicles", "2Chr": "2 Chronicles", "Ezra": "Ezra", "Neh": "Nehemiah",
	"Esth": "Esther", "Job": "Job", "Ps": "Psalms", "Prov": "Proverbs",
	"Eccl": "Ecclesiastes", "Song": "Song of Solomon", "Isa": "Isaiah", "Jer": "Jeremiah",
	"Lam": "Lamentations", "Ezek": "Ezekiel", "Dan": "Daniel", "Hos": "Hosea",
	"Joel": "Joel", "Amos": "Amos", "Obad": "Obadiah", "Jonah": "Jonah",
	"Mic": "Micah", "Nah": "Nahum", "Hab": "Habakkuk", "Zeph": "Zephaniah",
	"Hag": "Haggai", "Zech": "Zechariah", "Mal": "Malachi",
	"Matt": "Matthew", "Mark": "Mark", "Luke": "Luke", "John": "John",
	"Acts": "Acts", "Rom": "Romans", "1Cor": "1 Corinthians", "2Cor": "2 Corinthians",
	"Gal": "Galatians", "Eph": "Ephesians", "Phil": "Philippians", "Col": "Colossians",
	"1Thess": "1 Thessalonians", "2Thess": "2 Thessalonians", "1Tim": "1 Timothy", "2Tim": "2 Timothy",
	"Titus": "Titus", "Phlm": "Philemon", "Heb": "Hebrews", "Jas": "James",
	"1Pet": "1 Peter", "2Pet": "2 Peter", "1John": "1 John", "2John": "2 John",
	"3John": "3 John", "Jude": "Jude", "Rev": "Revelation",
}

// parseOSIS extracts verses from OSIS XML. Each verse element carries
// an osisID of the form "Book.Chapter.Verse"; milestone-style markup
// (empty verse elements with sID attributes) is not supported, matching
// the container-style documents the catalog serves.
func parseOSIS(versionID string, payload []byte, progress ProgressFunc) ([]store.BibleVerse, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewIngest(versionID, "decode",
			errors.NewParse("osis", versionID, err.Error()))
	}

	nodes := xmlquery.Find(doc, "//verse[@osisID]")
	if len(nodes) == 0 {
		return nil, errors.NewIngest(versionID, "decode",
			errors.NewParse("osis", versionID, "no verse elements found"))
	}

	var verses []store.BibleVerse
	chaptersSeen := 0
	lastChapterKey := ""
	for i, node := range nodes {
		osisID := node.SelectAttr("osisID")
		book, chapter, verse, err := splitOSISID(osisID)
		if err != nil {
			return nil, errors.NewIngest(versionID, "decode",
				errors.NewParse("osis", osisID, err.Error()))
		}

		text := strings.TrimSpace(node.InnerText())
		if text == "" {
			continue
		}
		verses = append(verses, store.BibleVerse{
			ID:        store.VerseID(versionID, book, chapter, verse),
			VersionID: versionID,
			Book:      book,
			Chapter:   chapter,
			Verse:     verse,
			Text:      text,
		})

		if key := fmt.Sprintf("%s.%d", book, chapter); key != lastChapterKey {
			lastChapterKey = key
			chaptersSeen++
			if progress != nil && chaptersSeen%progressInterval == 0 {
				progress(float64(i+1)/float64(len(nodes))*100,
					fmt.Sprintf("Processing %s %d...", book, chapter))
			}
		}
	}
	return verses, nil
}

func splitOSISID(osisID string) (string, int, int, error) {
	parts := strings.Split(osisID, ".")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("osisID %q is not Book.Chapter.Verse", osisID)
	}
	book, ok := osisBookNames[parts[0]]
	if !ok {
		return "", 0, 0, fmt.Errorf("unknown book code %q", parts[0])
	}
	chapter, err := strconv.Atoi(parts[1])
	if err != nil || chapter < 1 {
		return "", 0, 0, fmt.Errorf("bad chapter in %q", osisID)
	}
	verse, err := strconv.Atoi(parts[2])
	if err != nil || verse < 1 {
		return "", 0, 0, fmt.Errorf("bad verse in %q", osisID)
	}
	return book, chapter, verse, nil
}

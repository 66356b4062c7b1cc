package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
)

// usfmBookNames maps USFM book codes (from the \id marker) to canonical
// English book names.
var usfmBookNames = map[string]string{
	"GEN": "Genesis", "EXO": "Exodus", "LEV": "Leviticus", "NUM": "Numbers",
	"DEU": "Deuteronomy", "JOS": "Joshua", "JDG": "Judges", "RUT": "Ruth",
	"1SA": "1 Samuel", "2SA": "2 Samuel", "1KI": "1 Kings", "2KI": "2 Kings",
	"1CH": "1 Chronicles", "2CH": "2 Chronicles", "EZR": "Ezra", "NEH": "Nehemiah",
	"EST": "Esther", "JOB": "Job", "PSA": "Psalms", "PRO": "Proverbs",
	"ECC": "Ecclesiastes", "SNG": "Song of Solomon", "ISA": "Isaiah", "JER": "Jeremiah",
	"LAM": "Lamentations", "EZK": "Ezekiel", "DAN": "Daniel", "HOS": "Hosea",
	"JOL": "Joel", "AMO": "Amos", "OBA": "Obadiah", "JON": "Jonah",
	"MIC": "Micah", "NAM": "Nahum", "HAB": "Habakkuk", "ZEP": "Zephaniah",
	"HAG": "Haggai", "ZEC": "Zechariah", "MAL": "Malachi",
	"MAT": "Matthew", "MRK": "Mark", "LUK": "Luke", "JHN": "John",
	"ACT": "Acts", "ROM": "Romans", "1CO": "1 Corinthians", "2CO": "2 Corinthians",
	"GAL": "Galatians", "EPH": "Ephesians", "PHP": "Philippians", "COL": "Colossians",
	"1TH": "1 Thessalonians", "2TH": "2 Thessalonians", "1TI": "1 Timothy", "2TI": "2 Timothy",
	"TIT": "Titus", "PHM": "Philemon", "HEB": "Hebrews", "JAS": "James",
	"1PE": "1 Peter", "2PE": "2 Peter", "1JN": "1 John", "2JN": "2 John",
	"3JN": "3 John", "JUD": "Jude", "REV": "Revelation",
}

var (
	usfmIDPattern      = regexp.MustCompile(`\\id\s+([A-Z0-9]{3})`)
	usfmChapterSplit   = regexp.MustCompile(`\\c\s+`)
	usfmVersePattern   = regexp.MustCompile(`\\v\s+(\d+)\s+([^\\\n]+)`)
	usfmChapterNumeral = regexp.MustCompile(`^\d+`)
)

// parseUSFM scans USFM-tagged text. The document is split on chapter
// markers and each segment is scanned for verse markers. The book name
// comes from the \id marker when present; otherwise the uppercased
// version ID stands in, matching single-book files without headers.
func parseUSFM(versionID string, payload []byte, progress ProgressFunc) ([]store.BibleVerse, error) {
	content := string(payload)

	bookName := strings.ToUpper(versionID)
	if m := usfmIDPattern.FindStringSubmatch(content); m != nil {
		if name, ok := usfmBookNames[m[1]]; ok {
			bookName = name
		}
	}

	segments := usfmChapterSplit.Split(content, -1)
	if len(segments) < 2 {
		return nil, errors.NewIngest(versionID, "decode",
			errors.NewParse("usfm", versionID, "no chapter markers found"))
	}

	totalChapters := len(segments) - 1
	var verses []store.BibleVerse
	for i, segment := range segments[1:] {
		chapterNum := 0
		if m := usfmChapterNumeral.FindString(segment); m != "" {
			chapterNum, _ = strconv.Atoi(m)
		}
		if chapterNum == 0 {
			return nil, errors.NewIngest(versionID, "decode",
				errors.NewParse("usfm", versionID,
					fmt.Sprintf("chapter segment %d has no number", i+1)))
		}

		for _, m := range usfmVersePattern.FindAllStringSubmatch(segment, -1) {
			verseNum, _ := strconv.Atoi(m[1])
			verses = append(verses, store.BibleVerse{
				ID:        store.VerseID(versionID, bookName, chapterNum, verseNum),
				VersionID: versionID,
				Book:      bookName,
				Chapter:   chapterNum,
				Verse:     verseNum,
				Text:      strings.TrimSpace(m[2]),
			})
		}

		if progress != nil && (i+1)%progressInterval == 0 {
			progress(float64(i+1)/float64(totalChapters)*100,
				fmt.Sprintf("Processing %s %d...", bookName, chapterNum))
		}
	}
	return verses, nil
}

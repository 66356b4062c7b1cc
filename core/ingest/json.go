package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
)

// jsonBible covers both supported JSON layouts. Each chapter entry is
// either an object with numbered fields:
//
//	{"chapter": 3, "verses": [{"verse": 16, "text": "..."}]}
//
// or a bare array of verse strings where position determines the verse
// number. The two layouts may mix within one document; the shape is
// sniffed per chapter.
type jsonBible struct {
	Translation string     `json:"translation"`
	Books       []jsonBook `json:"books"`
}

type jsonBook struct {
	Name     string            `json:"name"`
	Chapters []json.RawMessage `json:"chapters"`
}

type jsonChapter struct {
	Chapter int         `json:"chapter"`
	Verses  []jsonVerse `json:"verses"`
}

type jsonVerse struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
}

func parseJSON(versionID string, payload []byte, progress ProgressFunc) ([]store.BibleVerse, error) {
	var doc jsonBible
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.NewIngest(versionID, "decode",
			errors.NewParse("json", versionID, err.Error()))
	}
	if len(doc.Books) == 0 {
		return nil, errors.NewIngest(versionID, "decode",
			errors.NewParse("json", versionID, "document has no books"))
	}

	totalChapters := 0
	for _, book := range doc.Books {
		totalChapters += len(book.Chapters)
	}

	var verses []store.BibleVerse
	processed := 0
	for _, book := range doc.Books {
		if book.Name == "" {
			return nil, errors.NewIngest(versionID, "decode",
				errors.NewParse("json", versionID, "book without a name"))
		}
		for i, raw := range book.Chapters {
			chapterNum, chapterVerses, err := parseJSONChapter(i+1, raw)
			if err != nil {
				return nil, errors.NewIngest(versionID, "decode",
					errors.NewParse("json", fmt.Sprintf("%s %d", book.Name, i+1), err.Error()))
			}
			for _, v := range chapterVerses {
				verses = append(verses, store.BibleVerse{
					ID:        store.VerseID(versionID, book.Name, chapterNum, v.Verse),
					VersionID: versionID,
					Book:      book.Name,
					Chapter:   chapterNum,
					Verse:     v.Verse,
					Text:      v.Text,
				})
			}

			processed++
			if progress != nil && processed%progressInterval == 0 {
				progress(float64(processed)/float64(totalChapters)*100,
					fmt.Sprintf("Processing %s %d...", book.Name, chapterNum))
			}
		}
	}
	return verses, nil
}

// parseJSONChapter decodes one chapter entry, sniffing its shape. The
// position argument is the 1-based index within the book's chapter
// array, used when the entry carries no explicit chapter number.
func parseJSONChapter(position int, raw json.RawMessage) (int, []jsonVerse, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, nil, fmt.Errorf("empty chapter entry")
	}

	if trimmed[0] == '[' {
		// Flat form: array of verse strings, verse number = index + 1.
		var texts []string
		if err := json.Unmarshal(trimmed, &texts); err != nil {
			return 0, nil, err
		}
		verses := make([]jsonVerse, len(texts))
		for i, text := range texts {
			verses[i] = jsonVerse{Verse: i + 1, Text: text}
		}
		return position, verses, nil
	}

	// Nested form: object with explicit chapter and verse numbers.
	var ch jsonChapter
	if err := json.Unmarshal(trimmed, &ch); err != nil {
		return 0, nil, err
	}
	chapterNum := ch.Chapter
	if chapterNum == 0 {
		chapterNum = position
	}
	for i := range ch.Verses {
		if ch.Verses[i].Verse == 0 {
			ch.Verses[i].Verse = i + 1
		}
	}
	return chapterNum, ch.Verses, nil
}

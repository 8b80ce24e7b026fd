package winmusic

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Song is one indexed library entry.
type Song struct {
	Author  string
	Title   string
	PURL    string
	License string
	Path    string
}

var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".m4a":  true,
	".wav":  true,
}

// ScanLibrary walks dir recursively and indexes every audio file with
// usable metadata. Tags win; a "Artist - Title" filename is the fallback.
// Files with neither are skipped.
func ScanLibrary(dir string) ([]Song, error) {
	var songs []Song
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !audioExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		song := Song{Path: path}
		readTags(&song)
		if song.Author == "" || song.Title == "" {
			inferFromFilename(&song)
		}
		if song.Author == "" || song.Title == "" {
			return nil
		}
		songs = append(songs, song)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return songs, nil
}

func readTags(song *Song) {
	f, err := os.Open(song.Path)
	if err != nil {
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return
	}
	song.Author = strings.TrimSpace(meta.Artist())
	song.Title = strings.TrimSpace(meta.Title())

	for key, value := range meta.Raw() {
		str, ok := value.(string)
		if !ok {
			continue
		}
		switch normalizeRawKey(key) {
		case "purl", "website", "woas":
			if song.PURL == "" {
				song.PURL = str
			}
		case "license", "licenseurl", "copyright", "tcop", "wcop":
			if song.License == "" {
				song.License = str
			}
		}
	}
}

// normalizeRawKey reduces raw frame names like "TXXX:LICENSE" to a
// comparable lowercase tail.
func normalizeRawKey(key string) string {
	key = strings.ToLower(key)
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	return key
}

func inferFromFilename(song *Song) {
	base := strings.TrimSuffix(filepath.Base(song.Path), filepath.Ext(song.Path))
	author, title, found := strings.Cut(base, " - ")
	if !found {
		return
	}
	if song.Author == "" {
		song.Author = strings.TrimSpace(author)
	}
	if song.Title == "" {
		song.Title = strings.TrimSpace(title)
	}
}

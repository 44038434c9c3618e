package refdata

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Reference data file base names. Each may be stored as .yaml, .yml or .json.
const (
	FileJurisdictions  = "jurisdictions"
	FileOccupations    = "occupations"
	FileWatchlist      = "watchlist"
	FileAdverseMedia   = "adverse_media"
	FileWealthKeywords = "wealth_keywords"
)

var extensions = []string{".yaml", ".yml", ".json"}

//go:embed data/*.yaml
var embedded embed.FS

type jurisdictionsFile struct {
	HighRiskJurisdictions *[]Jurisdiction `yaml:"high_risk_jurisdictions"`
}

type occupationsFile struct {
	HighRiskOccupations *[]string `yaml:"high_risk_occupations"`
}

type watchlistFile struct {
	Entries *[]WatchlistEntry `yaml:"entries"`
}

type adverseMediaFile struct {
	Entries *[]AdverseMediaEntry `yaml:"entries"`
}

type wealthKeywordsFile struct {
	Keywords *[]string `yaml:"keywords"`
}

// LoadDefault loads the mock reference data compiled into the binary.
func LoadDefault() (*ReferenceData, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, &DataLoadError{Err: err}
	}
	return Load(sub)
}

// LoadDir loads reference data from the files in dir.
func LoadDir(dir string) (*ReferenceData, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &DataLoadError{File: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &DataLoadError{File: dir, Err: errors.New("not a directory")}
	}
	return Load(os.DirFS(dir))
}

// Load reads and validates all five reference data files from the root of
// fsys. Either every file loads and validates or a *DataLoadError is
// returned and no data is produced.
func Load(fsys fs.FS) (*ReferenceData, error) {
	var (
		jf jurisdictionsFile
		of occupationsFile
		wf watchlistFile
		af adverseMediaFile
		kf wealthKeywordsFile
	)

	jName, err := decodeFile(fsys, FileJurisdictions, &jf)
	if err != nil {
		return nil, err
	}
	oName, err := decodeFile(fsys, FileOccupations, &of)
	if err != nil {
		return nil, err
	}
	wName, err := decodeFile(fsys, FileWatchlist, &wf)
	if err != nil {
		return nil, err
	}
	aName, err := decodeFile(fsys, FileAdverseMedia, &af)
	if err != nil {
		return nil, err
	}
	kName, err := decodeFile(fsys, FileWealthKeywords, &kf)
	if err != nil {
		return nil, err
	}

	if jf.HighRiskJurisdictions == nil {
		return nil, missingKey(jName, "high_risk_jurisdictions")
	}
	if err := validateJurisdictions(*jf.HighRiskJurisdictions); err != nil {
		return nil, &DataLoadError{File: jName, Err: err}
	}

	if of.HighRiskOccupations == nil {
		return nil, missingKey(oName, "high_risk_occupations")
	}
	if err := validateList("occupation", *of.HighRiskOccupations); err != nil {
		return nil, &DataLoadError{File: oName, Err: err}
	}

	if wf.Entries == nil {
		return nil, missingKey(wName, "entries")
	}
	if err := validateWatchlist(*wf.Entries); err != nil {
		return nil, &DataLoadError{File: wName, Err: err}
	}

	if af.Entries == nil {
		return nil, missingKey(aName, "entries")
	}
	if err := validateAdverseMedia(*af.Entries); err != nil {
		return nil, &DataLoadError{File: aName, Err: err}
	}

	if kf.Keywords == nil {
		return nil, missingKey(kName, "keywords")
	}
	if err := validateList("keyword", *kf.Keywords); err != nil {
		return nil, &DataLoadError{File: kName, Err: err}
	}

	return newReferenceData(
		*jf.HighRiskJurisdictions,
		*of.HighRiskOccupations,
		*wf.Entries,
		*af.Entries,
		*kf.Keywords,
	), nil
}

func missingKey(file, key string) error {
	return &DataLoadError{File: file, Err: fmt.Errorf("missing required key %q", key)}
}

// decodeFile locates base with one of the supported extensions and decodes it
// strictly into out. Unknown keys and mistyped values are rejected. It returns
// the name of the file that was read.
func decodeFile(fsys fs.FS, base string, out any) (string, error) {
	name, data, err := readFirst(fsys, base)
	if err != nil {
		return base, &DataLoadError{File: base, Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return name, &DataLoadError{File: name, Err: errors.New("file is empty")}
		}
		return name, &DataLoadError{File: name, Err: fmt.Errorf("malformed: %w", err)}
	}
	return name, nil
}

func readFirst(fsys fs.FS, base string) (string, []byte, error) {
	for _, ext := range extensions {
		name := base + ext
		data, err := fs.ReadFile(fsys, name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return name, nil, fmt.Errorf("failed to read: %w", err)
		}
	}
	return "", nil, fmt.Errorf("no %s.yaml, %s.yml or %s.json found: %w", base, base, base, fs.ErrNotExist)
}

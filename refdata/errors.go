package refdata

import "fmt"

// DataLoadError reports a missing or malformed reference data file. A load
// that returns a DataLoadError never yields partial reference data.
type DataLoadError struct {
	File string
	Err  error
}

func (e *DataLoadError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("reference data: %v", e.Err)
	}
	return fmt.Sprintf("reference data %s: %v", e.File, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/rules"
)

// submission is the file format accepted by score. YAML files use the same
// keys as JSON.
type submission struct {
	Profile        rules.Profile           `json:"profile"`
	Documents      rules.DocumentChecklist `json:"documents"`
	OCRAddressText string                  `json:"ocr_address_text"`
}

func newScoreCmd(flags *globalFlags) *cobra.Command {
	var (
		file    string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a profile file and print the result as JSON",
		Example: `  kycscore score --file applicant.yaml
  cat applicant.json | kycscore score --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			eng, err := flags.engine()
			if err != nil {
				return err
			}

			res, err := eng.Run(sub.Profile, sub.Documents, sub.OCRAddressText)
			if err != nil {
				var verr *engine.ValidationError
				if errors.As(err, &verr) {
					for _, f := range verr.Fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
					}
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "profile file (.json, .yaml or .yml), - for stdin")
	cmd.Flags().BoolVar(&compact, "compact", false, "print the result on a single line")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readSubmission(stdin io.Reader, path string) (*submission, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data, err = yamlToJSON(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	var sub submission
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sub); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &sub, nil
}

// yamlToJSON re-encodes a YAML document as JSON so both formats share the
// JSON field names and decoders.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("document is empty")
	}
	return json.Marshal(plainDates(doc))
}

// plainDates rewrites unquoted YAML dates, which decode as time.Time, back
// to YYYY-MM-DD strings.
func plainDates(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = plainDates(e)
		}
	case []any:
		for i, e := range t {
			t[i] = plainDates(e)
		}
	case time.Time:
		return t.Format("2006-01-02")
	}
	return v
}

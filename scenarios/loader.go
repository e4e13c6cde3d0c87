package scenarios

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/levinine/browserconnector/framework/helpers"
)

//go:embed files
var builtInFiles embed.FS

const builtInBasePath = "files"

// SourceInfo is the data of one scenario file after constants and parameters were expanded. A
// parameterized file produces one SourceInfo per parameter set.
type SourceInfo struct {
	FilePath string
	BaseName string
	Params   map[string]ldvalue.Value
	Data     []byte
}

// ParseInto parses the data into target.
func (s SourceInfo) ParseInto(target interface{}) error {
	if err := ParseJSONOrYAML(s.Data, target); err != nil {
		return fmt.Errorf("error parsing %q %s: %w", s.BaseName, s.ParamsString(), err)
	}
	return nil
}

// ParamsString describes the parameter set, such as "(method=GET,status=302)", or returns an
// empty string if there is none.
func (s SourceInfo) ParamsString() string {
	if len(s.Params) == 0 {
		return ""
	}
	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	parts := make([]string, 0, len(names))
	for _, k := range helpers.Sorted(names) {
		parts = append(parts, k+"="+s.Params[k].String())
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// LoadFile reads a scenario file from fsys and expands its substitutions.
func LoadFile(fsys fs.FS, filePath string) ([]SourceInfo, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	sources, err := expandSubstitutions(data)
	if err != nil {
		return nil, fmt.Errorf("error reading %q: %w", filePath, err)
	}
	for i := range sources {
		sources[i].FilePath = filePath
		sources[i].BaseName = path.Base(filePath)
	}
	return sources, nil
}

// LoadDir reads every .json, .yaml, and .yml file in a directory of fsys, in name order.
// Subdirectories and other files are ignored.
func LoadDir(fsys fs.FS, dir string) ([]SourceInfo, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	var ret []SourceInfo
	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}
		sources, err := LoadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		ret = append(ret, sources...)
	}
	return ret, nil
}

// LoadBuiltIn reads the scenarios that are compiled into the program.
func LoadBuiltIn() ([]SourceInfo, error) {
	return LoadDir(builtInFiles, builtInBasePath)
}

func isScenarioFile(name string) bool {
	switch path.Ext(name) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

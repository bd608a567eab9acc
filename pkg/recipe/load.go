package recipe

import (
	"github.com/matzehuels/soup/pkg/errors"
	"github.com/matzehuels/soup/pkg/fsys"
)

// LoadFile reads, parses and validates the manifest at path. Every failure
// is reported as RECIPE_LOAD_FAILURE naming the path; the cause keeps its
// own code.
func LoadFile(fs fsys.FileSystem, path string) (*Recipe, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecipeLoadFailure, err, "load %s", path)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRecipeLoadFailure, err, "load %s", path)
	}
	return rec, nil
}

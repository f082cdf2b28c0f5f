// Copyright 2025 taste Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rating

import (
	"os"
	"path/filepath"

	"github.com/juju/errors"
)

type builtInDataSet struct {
	path   string
	sep    string
	header bool
}

var builtInDataSets = map[string]builtInDataSet{
	// MovieLens: https://grouplens.org/datasets/movielens/
	"ml-100k": {
		path: filepath.Join("ml-100k", "u.data"),
		sep:  "\t",
	},
	"ml-1m": {
		path: filepath.Join("ml-1m", "ratings.dat"),
		sep:  "::",
	},
	"ml-20m": {
		path:   filepath.Join("ml-20m", "ratings.csv"),
		sep:    ",",
		header: true,
	},
	// FilmTrust: https://guoguibing.github.io/librec/datasets.html
	"filmtrust": {
		path: filepath.Join("filmtrust", "ratings.txt"),
		sep:  " ",
	},
}

// DataSetDir is the local folder searched for built-in data set files.
var DataSetDir string

func init() {
	if home, err := os.UserHomeDir(); err == nil {
		DataSetDir = filepath.Join(home, ".taste", "dataset")
	}
}

// LoadDataFromBuiltIn loads a named data set from DataSetDir. The files must
// be present locally, they are never downloaded.
func LoadDataFromBuiltIn(name string) (*DataSet, error) {
	dataset, exist := builtInDataSets[name]
	if !exist {
		return nil, errors.Errorf("unknown built-in data set %v", name)
	}
	return LoadDataFromCSV(filepath.Join(DataSetDir, dataset.path), dataset.sep, dataset.header)
}

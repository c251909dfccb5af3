package checkpoint

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//IndexFile is the name of the file listing the kept checkpoints
const IndexFile = "checkpoint"

type index struct {
	Latest      string   `yaml:"model_checkpoint_path"`
	All         []string `yaml:"all_model_checkpoint_paths"`
	SaveCounter int      `yaml:"save_counter"`
}

func readIndex(dir string) (*index, error) {
	data, err := os.ReadFile(filepath.Join(dir, IndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &index{}, nil
		}
		return nil, errors.Wrap(err, "Can't read index")
	}
	res := &index{}
	if err := yaml.Unmarshal(data, res); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal index")
	}
	return res, nil
}

func writeIndex(dir string, idx *index) error {
	data, err := yaml.Marshal(idx)
	if err != nil {
		return errors.Wrap(err, "Can't marshal index")
	}
	return writeAtomic(filepath.Join(dir, IndexFile), data)
}

func writeAtomic(file string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(file), filepath.Base(file)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "Can't create temp file")
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cErr := f.Close(); err == nil {
		err = cErr
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "Can't write "+tmp)
	}
	return errors.Wrap(os.Rename(tmp, file), "Can't rename "+tmp)
}

//Latest returns the path of the newest checkpoint in dir or "" if there is none
func Latest(dir string) (string, error) {
	idx, err := readIndex(dir)
	if err != nil {
		return "", err
	}
	if idx.Latest == "" {
		return "", nil
	}
	return filepath.Join(dir, idx.Latest), nil
}

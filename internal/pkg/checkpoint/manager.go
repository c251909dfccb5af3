package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airenas/nercrf/internal/pkg/cmdapp"
	"github.com/pkg/errors"
)

//Prefix of checkpoint file names
const Prefix = "model.ckpt"

//Manager saves numbered checkpoints into a dir keeping only the newest ones
type Manager struct {
	dir       string
	maxToKeep int
	idx       *index
}

//NewManager creates manager, numbering continues after the checkpoints already in dir
func NewManager(dir string, maxToKeep int) (*Manager, error) {
	if maxToKeep < 1 {
		return nil, errors.Errorf("Wrong max to keep %d", maxToKeep)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "Can't create dir "+dir)
	}
	idx, err := readIndex(dir)
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir, maxToKeep: maxToKeep, idx: idx}, nil
}

//Save writes the state as the next checkpoint and prunes the oldest ones.
//Returns the path of the saved file
func (m *Manager) Save(st *State) (string, error) {
	data, err := encode(st)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s-%d", Prefix, m.idx.SaveCounter+1)
	file := filepath.Join(m.dir, name)
	if err := writeAtomic(file, data); err != nil {
		return "", err
	}
	all := append(append([]string{}, m.idx.All...), name)
	var removed []string
	if len(all) > m.maxToKeep {
		removed = all[:len(all)-m.maxToKeep]
		all = all[len(all)-m.maxToKeep:]
	}
	idx := &index{Latest: name, All: all, SaveCounter: m.idx.SaveCounter + 1}
	if err := writeIndex(m.dir, idx); err != nil {
		return "", err
	}
	m.idx = idx
	for _, r := range removed {
		if err := os.Remove(filepath.Join(m.dir, r)); err != nil && !os.IsNotExist(err) {
			cmdapp.Log.Warnf("Can't remove old checkpoint %s: %v", r, err)
		}
	}
	return file, nil
}

//Checkpoints returns paths of kept checkpoints, the oldest first
func (m *Manager) Checkpoints() []string {
	res := make([]string, len(m.idx.All))
	for i, s := range m.idx.All {
		res[i] = filepath.Join(m.dir, s)
	}
	return res
}

//Dir returns checkpoints dir
func (m *Manager) Dir() string {
	return m.dir
}

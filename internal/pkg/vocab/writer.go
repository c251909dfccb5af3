package vocab

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

//WriteFile saves tokens one per line
func WriteFile(file string, tokens []string) error {
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return errors.Wrap(err, "Can't create dir "+dir)
		}
	}
	f, err := os.Create(file)
	if err != nil {
		return errors.Wrap(err, "Can't create file "+file)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, s := range tokens {
		if _, err := w.WriteString(s + "\n"); err != nil {
			return errors.Wrap(err, "Can't write file "+file)
		}
	}
	return errors.Wrap(w.Flush(), "Can't write file "+file)
}

//Exists checks if file is present
func Exists(file string) bool {
	st, err := os.Stat(file)
	return err == nil && !st.IsDir()
}

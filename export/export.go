package export

import (
	"bytes"
	"path/filepath"

	"github.com/bgokden/labelsplit/models"
	"github.com/magneticio/go-common/logging"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

// File names written by Writer.
const (
	TrainList      = "train.txt"
	ValidationList = "val.txt"
	TestList       = "test.txt"
	Descriptor     = "data.yaml"
)

// ClassNames is the part of a class catalogue the descriptor needs.
type ClassNames interface {
	NumClasses() int
	Name(id int) string
}

// DatasetDescriptor is the data.yaml layout read by common training tools.
type DatasetDescriptor struct {
	ID    string   `yaml:"id,omitempty"`
	Train string   `yaml:"train"`
	Val   string   `yaml:"val"`
	Test  string   `yaml:"test"`
	NC    int      `yaml:"nc"`
	Names []string `yaml:"names"`
	Seed  int64    `yaml:"seed"`
}

// Writer writes a manifest as ImageSets style lists: one image name per line.
type Writer struct {
	Fs afero.Fs
}

// NewWriter writes to the operating system filesystem.
func NewWriter() *Writer {
	return &Writer{Fs: afero.NewOsFs()}
}

// Write creates dir and writes the three subset lists and the descriptor into it.
func (w *Writer) Write(dir string, m *models.Manifest, classes ClassNames) error {
	if err := w.Fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating export dir %v", dir)
	}
	lists := []struct {
		name   string
		images []string
	}{
		{TrainList, m.Train},
		{ValidationList, m.Validation},
		{TestList, m.Test},
	}
	for _, list := range lists {
		if err := w.writeList(filepath.Join(dir, list.name), list.images); err != nil {
			return err
		}
	}

	desc := DatasetDescriptor{
		ID:    m.ID,
		Train: TrainList,
		Val:   ValidationList,
		Test:  TestList,
		NC:    classes.NumClasses(),
		Names: make([]string, classes.NumClasses()),
		Seed:  m.Seed,
	}
	for id := range desc.Names {
		desc.Names[id] = classes.Name(id)
	}
	out, err := yaml.Marshal(&desc)
	if err != nil {
		return errors.Wrap(err, "encoding dataset descriptor")
	}
	if err := afero.WriteFile(w.Fs, filepath.Join(dir, Descriptor), out, 0644); err != nil {
		return errors.Wrapf(err, "writing %v", Descriptor)
	}
	logging.Info("Exported manifest %v to %v\n", m.ID, dir)
	return nil
}

func (w *Writer) writeList(path string, images []string) error {
	var buf bytes.Buffer
	for _, name := range images {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}
	if err := afero.WriteFile(w.Fs, path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing %v", path)
	}
	return nil
}

// ReadList reads an image list written by Write.
func (w *Writer) ReadList(path string) ([]string, error) {
	content, err := afero.ReadFile(w.Fs, path)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, line := range bytes.Split(content, []byte{'\n'}) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			names = append(names, string(line))
		}
	}
	return names, nil
}

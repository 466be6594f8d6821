package loader

import (
	"io"

	"gopkg.in/yaml.v3"
)

type YAMLRunLoader struct {
	reader io.Reader
}

func NewYAMLRunLoader(reader io.Reader) *YAMLRunLoader {
	return &YAMLRunLoader{
		reader: reader,
	}
}

func (rl *YAMLRunLoader) Load(validate bool) (*RunFile, error) {
	decoder := yaml.NewDecoder(rl.reader)
	var rf RunFile
	if err := decoder.Decode(&rf); err != nil {
		return nil, err
	}
	if validate {
		if err := rf.Validate(); err != nil {
			return nil, err
		}
	}
	return &rf, nil
}

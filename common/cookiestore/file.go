package cookiestore

import (
	"bytes"
	"os"
	"path/filepath"

	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sagernet/sing/common/json"
)

const fileVersion = 1

type fileContent struct {
	Version int     `json:"version"`
	Cookies []Entry `json:"cookies"`
}

// Load adds the cookies saved at path. Expired entries are skipped.
func (j *Jar) Load(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file fileContent
	err = json.NewDecoder(bytes.NewReader(content)).Decode(&file)
	if err != nil {
		return E.Cause(err, "decode cookie file ", path)
	}
	if file.Version != fileVersion {
		return E.New("unsupported cookie file version: ", file.Version)
	}
	now := j.now()
	for _, entry := range file.Cookies {
		if entry.expired(now) {
			continue
		}
		j.restore(entry)
	}
	return nil
}

// Save writes the live cookies to path by replacing the file atomically.
func (j *Jar) Save(path string) error {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetIndent("", "  ")
	err := encoder.Encode(fileContent{
		Version: fileVersion,
		Cookies: j.Entries(),
	})
	if err != nil {
		return E.Cause(err, "encode cookies")
	}
	directory := filepath.Dir(path)
	tempFile, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*")
	if err != nil {
		return E.Cause(err, "create cookie file")
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)
	_, err = tempFile.Write(buffer.Bytes())
	if err == nil {
		err = tempFile.Sync()
	}
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return E.Cause(err, "write cookie file")
	}
	err = os.Chmod(tempPath, 0o600)
	if err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

package cryptox

import (
	"os"
	"path/filepath"
)

// LoadOrGeneratePepper loads the pepper from file, generating and
// persisting a new one if the file does not exist yet. Losing the file
// invalidates every stored password digest.
func LoadOrGeneratePepper(file string) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		pepper, err := GenerateToken(keyLength)
		if err != nil {
			return "", err
		}

		if err := os.WriteFile(file, []byte(pepper), 0600); err != nil {
			return "", err
		}
		return pepper, nil
	}

	b, err := os.ReadFile(file) // #nosec G304 - path comes from operator config
	if err != nil {
		return "", err
	}

	return string(b), nil
}

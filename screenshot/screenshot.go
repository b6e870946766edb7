// Package screenshot captures the primary screen.
package screenshot

import (
	"encoding/base64"
	"fmt"
	"os"
)

// DataURL reads the PNG image at path and encodes it as a data URL
// suitable for the backend's /ocr endpoint.
func DataURL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read screenshot: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestRequestFromFlags(t *testing.T) {
	face := writeFile(t, "face.png", pngHeader)
	input := writeFile(t, "input.png", pngHeader)

	require.NoError(t, planCmd.ParseFlags([]string{
		"--request", "portrait",
		"--drive-link", "https://drive.example/set",
		"--face", face + "," + face,
		"--input", input,
	}))

	req, err := requestFromFlags(planCmd)
	require.NoError(t, err)
	assert.Equal(t, "portrait", req.Text)
	assert.Equal(t, "https://drive.example/set", req.AuxiliaryContext)
	assert.Len(t, req.Images.Face, 2)
	assert.Empty(t, req.Images.Style)
	require.NotNil(t, req.Images.Input)
	assert.Equal(t, "image/png", req.Images.Input.MIMEType)
	assert.Equal(t, "input.png", req.Images.Input.Name)
}

func TestLoadImageRejectsNonImages(t *testing.T) {
	_, err := loadImage(writeFile(t, "notes.txt", []byte("plain text")))
	assert.Error(t, err)

	_, err = loadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

package httpserver

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/1broseidon/director/models"
)

// formFiles returns the files posted under name, accepting both "name" and "name[]".
func formFiles(form *multipart.Form, name string) []*multipart.FileHeader {
	files := append([]*multipart.FileHeader{}, form.File[name+"[]"]...)
	return append(files, form.File[name]...)
}

// readImages reads and sniffs every file posted under the category's field.
func readImages(form *multipart.Form, cat models.Category) ([]models.ReferenceImage, error) {
	headers := formFiles(form, string(cat))
	images := make([]models.ReferenceImage, 0, len(headers))
	for _, header := range headers {
		img, err := readImage(header)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", errBadUpload, cat, header.Filename, err)
		}
		images = append(images, img)
	}
	return images, nil
}

func readImage(header *multipart.FileHeader) (models.ReferenceImage, error) {
	file, err := header.Open()
	if err != nil {
		return models.ReferenceImage{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.ReferenceImage{}, err
	}
	if len(data) == 0 {
		return models.ReferenceImage{}, fmt.Errorf("file is empty")
	}

	mimeType := mimetype.Detect(data).String()
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return models.ReferenceImage{}, fmt.Errorf("not an image (%s)", mimeType)
	}

	return models.ReferenceImage{Name: header.Filename, MIMEType: mimeType, Data: data}, nil
}

// readReferenceSet collects the face, body, style and input uploads of a plan request.
func readReferenceSet(form *multipart.Form) (models.ReferenceImageSet, error) {
	var (
		set models.ReferenceImageSet
		err error
	)
	if set.Face, err = readImages(form, models.CategoryFace); err != nil {
		return set, err
	}
	if set.Body, err = readImages(form, models.CategoryBody); err != nil {
		return set, err
	}
	if set.Style, err = readImages(form, models.CategoryStyle); err != nil {
		return set, err
	}

	inputs, err := readImages(form, models.CategoryInput)
	if err != nil {
		return set, err
	}
	if len(inputs) > 0 {
		set.Input = &inputs[0]
	}
	return set, nil
}

// extensionFor returns the file extension for a MIME type, without the dot.
func extensionFor(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return strings.TrimPrefix(m.Extension(), ".")
	}
	return "png"
}
